package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
	"github.com/jhoicas/almacen-bridge/internal/infrastructure/postgres"
)

var productCols = []string{"id", "name", "barcode", "category_id", "rfid_tag", "quantity", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestProductRepo_GetForUpdateBloqueaLaFila(t *testing.T) {
	mock := newMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tag := "E200-01"
	mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(int64(7), "Tornillo M6", nil, nil, &tag, int64(12), now, now))

	p, err := postgres.NewProductRepository(mock).GetForUpdate(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Tornillo M6", p.Name)
	assert.Equal(t, "E200-01", p.RFIDTag)
	assert.Empty(t, p.Barcode)
	assert.Equal(t, int64(12), p.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetForUpdateSinFila(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(productCols))

	p, err := postgres.NewProductRepository(mock).GetForUpdate(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := postgres.NewProductRepository(mock)

	mock.ExpectExec(`UPDATE products SET quantity = \$2`).
		WithArgs(int64(7), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateQuantity(ctx, 7, 3))

	mock.ExpectExec(`UPDATE products SET quantity = \$2`).
		WithArgs(int64(8), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, 8, 3), domain.ErrNotFound)

	mock.ExpectExec(`UPDATE products SET quantity = \$2`).
		WithArgs(int64(7), int64(-1)).
		WillReturnError(&pgconn.PgError{Code: "23514"})
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, 7, -1), domain.ErrInvalidInput)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create(t *testing.T) {
	mock := newMock(t)
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO transactions`).
		WithArgs(nil, int64(1), int64(7), int64(4), entity.TransactionTypeGet, (*int64)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "timestamp"}).AddRow(int64(31), ts))

	txn := &entity.Transaction{UserID: 1, ProductID: 7, Quantity: 4, Type: entity.TransactionTypeGet}
	require.NoError(t, postgres.NewTransactionRepository(mock).Create(context.Background(), txn))
	assert.Equal(t, int64(31), txn.ID)
	assert.Equal(t, ts, txn.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_CommitYRollback(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE products SET quantity`).
			WithArgs(int64(7), int64(5)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := postgres.NewTxRunner(mock).Run(ctx, func(products repository.ProductRepository, _ repository.TransactionRepository) error {
			return products.UpdateQuantity(ctx, 7, 5)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		mock := newMock(t)
		boom := errors.New("stock insuficiente")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := postgres.NewTxRunner(mock).Run(ctx, func(repository.ProductRepository, repository.TransactionRepository) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin falla", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("sin conexiones"))

		err := postgres.NewTxRunner(mock).Run(ctx, func(repository.ProductRepository, repository.TransactionRepository) error {
			t.Fatal("no debe ejecutarse")
			return nil
		})
		assert.ErrorContains(t, err, "begin transaction")
	})
}

func TestCabinetRepo_AddShelfCategoryBloqueaElEstante(t *testing.T) {
	ctx := context.Background()
	link := entity.ShelfCategory{ShelfID: 3, CategoryID: 9}

	t.Run("estante vacío", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT allows_multiple_categories FROM shelves WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"allows_multiple_categories"}).AddRow(false))
		mock.ExpectQuery(`SELECT count\(\*\) FROM shelf_categories`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO shelf_categories`).
			WithArgs(int64(3), int64(9)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		require.NoError(t, postgres.NewCabinetRepository(mock).AddShelfCategory(ctx, link))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("estante único ocupado", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM shelves WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"allows_multiple_categories"}).AddRow(false))
		mock.ExpectQuery(`SELECT count\(\*\) FROM shelf_categories`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := postgres.NewCabinetRepository(mock).AddShelfCategory(ctx, link)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("estante múltiple no cuenta", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM shelves WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"allows_multiple_categories"}).AddRow(true))
		mock.ExpectExec(`INSERT INTO shelf_categories`).
			WithArgs(int64(3), int64(9)).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		err := postgres.NewCabinetRepository(mock).AddShelfCategory(ctx, link)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
