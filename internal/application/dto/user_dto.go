package dto

import "time"

// CreateUserRequest entrada para crear un operador (password en texto, se hashea en el caso de uso).
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	RFIDTag  string   `json:"rfid_tag"`
	Roles    []string `json:"roles,omitempty"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	RFIDTag   string    `json:"rfid_tag"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest credenciales de usuario.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse sesión emitida tras validar credenciales.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// RFIDAuthRequest body de POST /rfid/auth.
type RFIDAuthRequest struct {
	RFIDTag string `json:"rfid_tag"`
}

// RFIDAuthResponse respuesta de autenticación por RFID.
type RFIDAuthResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}
