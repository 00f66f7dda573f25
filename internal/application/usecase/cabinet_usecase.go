package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

// CategoryUseCase alta y listado de categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría con nombre único.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	c := &entity.Category{Name: in.Name, Description: strings.TrimSpace(in.Description)}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}, nil
}

// List devuelve todas las categorías.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out, nil
}

// CabinetUseCase armarios, estantes y categorías permitidas por estante.
type CabinetUseCase struct {
	repo         repository.CabinetRepository
	categoryRepo repository.CategoryRepository
}

// NewCabinetUseCase construye el caso de uso.
func NewCabinetUseCase(repo repository.CabinetRepository, categoryRepo repository.CategoryRepository) *CabinetUseCase {
	return &CabinetUseCase{repo: repo, categoryRepo: categoryRepo}
}

// Create crea un armario con nombre único.
func (uc *CabinetUseCase) Create(ctx context.Context, in dto.CreateCabinetRequest) (*dto.CabinetResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	c := &entity.Cabinet{Name: in.Name}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CabinetResponse{ID: c.ID, Name: c.Name}, nil
}

// List devuelve todos los armarios.
func (uc *CabinetUseCase) List(ctx context.Context) ([]dto.CabinetResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CabinetResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CabinetResponse{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// CreateShelf crea un estante dentro de un armario existente.
func (uc *CabinetUseCase) CreateShelf(ctx context.Context, cabinetID int64, in dto.CreateShelfRequest) (*dto.ShelfResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	cab, err := uc.repo.GetByID(ctx, cabinetID)
	if err != nil {
		return nil, err
	}
	if cab == nil {
		return nil, domain.ErrNotFound
	}
	sh := &entity.Shelf{CabinetID: cabinetID, Name: in.Name, AllowsMultipleCategories: in.AllowsMultipleCategories}
	if err := uc.repo.CreateShelf(ctx, sh); err != nil {
		return nil, err
	}
	return toShelfResponse(sh, nil), nil
}

// ListShelves lista los estantes de un armario con sus categorías.
func (uc *CabinetUseCase) ListShelves(ctx context.Context, cabinetID int64) ([]dto.ShelfResponse, error) {
	cab, err := uc.repo.GetByID(ctx, cabinetID)
	if err != nil {
		return nil, err
	}
	if cab == nil {
		return nil, domain.ErrNotFound
	}
	shelves, err := uc.repo.ListShelves(ctx, cabinetID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShelfResponse, 0, len(shelves))
	for _, sh := range shelves {
		cats, err := uc.repo.ListShelfCategories(ctx, sh.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toShelfResponse(sh, cats))
	}
	return out, nil
}

// AddShelfCategory asocia una categoría a un estante. Un estante sin
// allows_multiple_categories admite como máximo una categoría (ErrConflict del repositorio).
func (uc *CabinetUseCase) AddShelfCategory(ctx context.Context, shelfID int64, in dto.AddShelfCategoryRequest) (*dto.ShelfResponse, error) {
	sh, err := uc.repo.GetShelf(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, domain.ErrNotFound
	}
	cat, err := uc.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.ErrNotFound
	}
	// El repositorio comprueba la regla de categoría única de forma atómica.
	if err := uc.repo.AddShelfCategory(ctx, entity.ShelfCategory{ShelfID: shelfID, CategoryID: in.CategoryID}); err != nil {
		return nil, err
	}
	cats, err := uc.repo.ListShelfCategories(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	return toShelfResponse(sh, cats), nil
}

func toShelfResponse(sh *entity.Shelf, cats []int64) *dto.ShelfResponse {
	if cats == nil {
		cats = []int64{}
	}
	return &dto.ShelfResponse{
		ID:                       sh.ID,
		CabinetID:                sh.CabinetID,
		Name:                     sh.Name,
		AllowsMultipleCategories: sh.AllowsMultipleCategories,
		CategoryIDs:              cats,
	}
}
