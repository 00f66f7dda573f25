package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
	"github.com/jhoicas/almacen-bridge/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// hash de relleno para que un usuario inexistente cueste lo mismo que una contraseña errónea.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.MinCost)

// AuthUseCase puerta de control de acceso: credenciales y RFID contra la tabla de usuarios.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// HashPassword genera el hash bcrypt de una contraseña.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AuthenticateCredentials verifica username/password y emite un token de sesión.
// Usuario inexistente y contraseña errónea son indistinguibles (ErrUnauthorized).
func (uc *AuthUseCase) AuthenticateCredentials(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		uc.log.Warn().Str("username", username).Msg("login rechazado")
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warn().Str("username", username).Msg("login rechazado")
		return nil, domain.ErrUnauthorized
	}
	token, exp, err := jwt.Generate(uc.jwtCfg.Secret, strconv.FormatInt(user.ID, 10), user.Username,
		user.PrimaryRole(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Msg("login correcto")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      *ToUserResponse(user),
	}, nil
}

// AuthenticateRFID devuelve el id del usuario dueño de la etiqueta. No autoriza ninguna operación concreta.
func (uc *AuthUseCase) AuthenticateRFID(ctx context.Context, tag string) (int64, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByRFID(ctx, tag)
	if err != nil {
		return 0, err
	}
	if user == nil {
		uc.log.Warn().Str("rfid_tag", tag).Msg("RFID no autorizado")
		return 0, domain.ErrUnauthorized
	}
	return user.ID, nil
}

// UserExists confirma que un id de sesión sigue correspondiendo a un usuario.
func (uc *AuthUseCase) UserExists(ctx context.Context, id int64) (bool, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// ToUserResponse proyección pública de un usuario.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		RFIDTag:   u.RFIDTag,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}
