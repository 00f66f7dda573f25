package entity

import "time"

// Roles conocidos. Los roles viven en la tabla roles y se asignan vía user_roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User representa un operador del almacén. RFIDTag y Username son únicos.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt, nunca en plano después de persistir
	RFIDTag      string
	Roles        []string
	CreatedAt    time.Time
}

// HasRole indica si el usuario tiene asignado el rol.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole devuelve el rol que viaja en el token de sesión.
func (u *User) PrimaryRole() string {
	if u.HasRole(RoleAdmin) {
		return RoleAdmin
	}
	if len(u.Roles) > 0 {
		return u.Roles[0]
	}
	return RoleOperator
}

// Role dato de referencia estático.
type Role struct {
	ID   int64
	Name string
}
