package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/almacen-bridge/internal/application/auth"
	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios (alta por administrador, sin borrado).
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// Create registra un usuario con la contraseña hasheada (bcrypt) y sus roles; por defecto operator.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.RFIDTag = strings.TrimSpace(in.RFIDTag)
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{entity.RoleOperator}
	}
	for _, r := range roles {
		if r != entity.RoleAdmin && r != entity.RoleOperator {
			return nil, domain.ErrInvalidInput
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:     in.Username,
		PasswordHash: hash,
		RFIDTag:      in.RFIDTag,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	for _, r := range roles {
		if err := uc.repo.AssignRole(ctx, user.ID, r); err != nil {
			return nil, err
		}
	}
	user.Roles = roles
	return auth.ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return auth.ToUserResponse(user), nil
}

// List lista usuarios paginados.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.UserResponse, error) {
	page.DefaultPage()
	users, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *auth.ToUserResponse(u))
	}
	return out, nil
}
