package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-bridge/internal/application/auth"
	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/domain"
)

// AuthHandler login por credenciales y autenticación RFID.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.AuthenticateCredentials(c.UserContext(), in.Username, in.Password)
	if err != nil {
		return fail(c, err, errorTexts{
			domain.ErrUnauthorized: "Invalid Credentials",
			domain.ErrInvalidInput: "username y password son requeridos",
		})
	}
	return c.JSON(out)
}

// RFIDAuth godoc
// @Summary      Autenticar etiqueta RFID
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RFIDAuthRequest  true  "rfid_tag"
// @Success      200   {object}  dto.RFIDAuthResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /rfid/auth [post]
func (h *AuthHandler) RFIDAuth(c *fiber.Ctx) error {
	var in dto.RFIDAuthRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	userID, err := h.uc.AuthenticateRFID(c.UserContext(), strings.TrimSpace(in.RFIDTag))
	if err != nil {
		return fail(c, err, errorTexts{domain.ErrUnauthorized: "Unauthorized RFID"})
	}
	return c.JSON(dto.RFIDAuthResponse{Message: "RFID authenticated", UserID: userID})
}
