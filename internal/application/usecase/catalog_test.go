package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/usecase"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/memstore"
)

func TestUserUseCase_Create(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.NewUserUseCase(store.Users())

	res, err := uc.Create(ctx, dto.CreateUserRequest{Username: " ana ", Password: "clave", RFIDTag: "tag-1"})
	require.NoError(t, err)
	assert.Equal(t, "ana", res.Username)
	assert.Equal(t, []string{entity.RoleOperator}, res.Roles)

	stored, err := store.Users().GetByUsername(ctx, "ana")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave")))

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "ana", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "luis", Password: "x", Roles: []string{"root"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "luis"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProductUseCase_Create(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	cats := usecase.NewCategoryUseCase(store.Categories())
	uc := usecase.NewProductUseCase(store.Products(), store.Categories())

	cat, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "Tornillería"})
	require.NoError(t, err)

	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Tornillo", Barcode: "770", RFIDTag: "p-1", CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Quantity)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Otro", Barcode: "771", RFIDTag: "p-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	missing := int64(99)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Otro", Barcode: "772", CategoryID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Sin código"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tornillo", got.Name)

	none, err := uc.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, none)

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestCabinetUseCase_ShelfCategories(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	cats := usecase.NewCategoryUseCase(store.Categories())
	uc := usecase.NewCabinetUseCase(store.Cabinets(), store.Categories())

	c1, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "A"})
	require.NoError(t, err)
	c2, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "B"})
	require.NoError(t, err)

	cab, err := uc.Create(ctx, dto.CreateCabinetRequest{Name: "Armario 1"})
	require.NoError(t, err)
	single, err := uc.CreateShelf(ctx, cab.ID, dto.CreateShelfRequest{Name: "S1"})
	require.NoError(t, err)
	multi, err := uc.CreateShelf(ctx, cab.ID, dto.CreateShelfRequest{Name: "S2", AllowsMultipleCategories: true})
	require.NoError(t, err)

	_, err = uc.AddShelfCategory(ctx, single.ID, dto.AddShelfCategoryRequest{CategoryID: c1.ID})
	require.NoError(t, err)
	_, err = uc.AddShelfCategory(ctx, single.ID, dto.AddShelfCategoryRequest{CategoryID: c2.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.AddShelfCategory(ctx, multi.ID, dto.AddShelfCategoryRequest{CategoryID: c1.ID})
	require.NoError(t, err)
	res, err := uc.AddShelfCategory(ctx, multi.ID, dto.AddShelfCategoryRequest{CategoryID: c2.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{c1.ID, c2.ID}, res.CategoryIDs)

	_, err = uc.AddShelfCategory(ctx, multi.ID, dto.AddShelfCategoryRequest{CategoryID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.CreateShelf(ctx, 999, dto.CreateShelfRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	shelves, err := uc.ListShelves(ctx, cab.ID)
	require.NoError(t, err)
	require.Len(t, shelves, 2)
	assert.Equal(t, []int64{c1.ID}, shelves[0].CategoryIDs)

	_, err = uc.Create(ctx, dto.CreateCabinetRequest{Name: "Armario 1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCabinetUseCase_AltasConcurrentesEnEstanteUnico(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	cats := usecase.NewCategoryUseCase(store.Categories())
	uc := usecase.NewCabinetUseCase(store.Cabinets(), store.Categories())

	cab, err := uc.Create(ctx, dto.CreateCabinetRequest{Name: "Armario"})
	require.NoError(t, err)
	shelf, err := uc.CreateShelf(ctx, cab.ID, dto.CreateShelfRequest{Name: "Único"})
	require.NoError(t, err)

	const n = 8
	ids := make([]int64, n)
	for i := range ids {
		c, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: fmt.Sprintf("C%d", i)})
		require.NoError(t, err)
		ids[i] = c.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	start := make(chan struct{})
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			<-start
			_, err := uc.AddShelfCategory(ctx, shelf.ID, dto.AddShelfCategoryRequest{CategoryID: id})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(id)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	shelves, err := uc.ListShelves(ctx, cab.ID)
	require.NoError(t, err)
	require.Len(t, shelves, 1)
	assert.Len(t, shelves[0].CategoryIDs, 1)
}
