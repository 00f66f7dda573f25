package repository

import (
	"context"

	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
)

// CabinetRepository puerto de persistencia para armarios, estantes y sus categorías.
type CabinetRepository interface {
	Create(ctx context.Context, cabinet *entity.Cabinet) error
	GetByID(ctx context.Context, id int64) (*entity.Cabinet, error)
	List(ctx context.Context) ([]*entity.Cabinet, error)

	CreateShelf(ctx context.Context, shelf *entity.Shelf) error
	GetShelf(ctx context.Context, id int64) (*entity.Shelf, error)
	ListShelves(ctx context.Context, cabinetID int64) ([]*entity.Shelf, error)

	AddShelfCategory(ctx context.Context, link entity.ShelfCategory) error
	ListShelfCategories(ctx context.Context, shelfID int64) ([]int64, error)
}
