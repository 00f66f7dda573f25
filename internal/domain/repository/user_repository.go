package repository

import (
	"context"

	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las búsquedas devuelven (nil, nil) cuando no existe el registro.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByRFID(ctx context.Context, rfidTag string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	AssignRole(ctx context.Context, userID int64, roleName string) error
}
