package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

var _ repository.CabinetRepository = (*CabinetRepo)(nil)

// CabinetRepo armarios, estantes y shelf_categories sobre PostgreSQL.
type CabinetRepo struct {
	q Querier
}

// NewCabinetRepository construye el adaptador.
func NewCabinetRepository(q Querier) *CabinetRepo {
	return &CabinetRepo{q: q}
}

func (r *CabinetRepo) Create(ctx context.Context, c *entity.Cabinet) error {
	if err := r.q.QueryRow(ctx, `INSERT INTO cabinets (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID); err != nil {
		return mapWriteError("insert cabinet", err)
	}
	return nil
}

func (r *CabinetRepo) GetByID(ctx context.Context, id int64) (*entity.Cabinet, error) {
	var c entity.Cabinet
	err := r.q.QueryRow(ctx, `SELECT id, name FROM cabinets WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cabinet: %w", err)
	}
	return &c, nil
}

func (r *CabinetRepo) List(ctx context.Context) ([]*entity.Cabinet, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM cabinets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cabinets: %w", err)
	}
	defer rows.Close()

	var list []*entity.Cabinet
	for rows.Next() {
		var c entity.Cabinet
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan cabinet: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CabinetRepo) CreateShelf(ctx context.Context, s *entity.Shelf) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO shelves (cabinet_id, name, allows_multiple_categories) VALUES ($1, $2, $3) RETURNING id`,
		s.CabinetID, s.Name, s.AllowsMultipleCategories,
	).Scan(&s.ID)
	if err != nil {
		return mapWriteError("insert shelf", err)
	}
	return nil
}

func (r *CabinetRepo) GetShelf(ctx context.Context, id int64) (*entity.Shelf, error) {
	var s entity.Shelf
	err := r.q.QueryRow(ctx,
		`SELECT id, cabinet_id, name, allows_multiple_categories FROM shelves WHERE id = $1`, id,
	).Scan(&s.ID, &s.CabinetID, &s.Name, &s.AllowsMultipleCategories)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shelf: %w", err)
	}
	return &s, nil
}

func (r *CabinetRepo) ListShelves(ctx context.Context, cabinetID int64) ([]*entity.Shelf, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, cabinet_id, name, allows_multiple_categories FROM shelves WHERE cabinet_id = $1 ORDER BY id`, cabinetID)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}
	defer rows.Close()

	var list []*entity.Shelf
	for rows.Next() {
		var s entity.Shelf
		if err := rows.Scan(&s.ID, &s.CabinetID, &s.Name, &s.AllowsMultipleCategories); err != nil {
			return nil, fmt.Errorf("scan shelf: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// AddShelfCategory bloquea la fila del estante antes de contar sus categorías, así dos altas
// concurrentes no dejan dos categorías en un estante de categoría única.
func (r *CabinetRepo) AddShelfCategory(ctx context.Context, link entity.ShelfCategory) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var multiple bool
	err = tx.QueryRow(ctx,
		`SELECT allows_multiple_categories FROM shelves WHERE id = $1 FOR UPDATE`, link.ShelfID).Scan(&multiple)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("shelf %d: %w", link.ShelfID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock shelf: %w", err)
	}
	if !multiple {
		var n int
		if err := tx.QueryRow(ctx,
			`SELECT count(*) FROM shelf_categories WHERE shelf_id = $1`, link.ShelfID).Scan(&n); err != nil {
			return fmt.Errorf("count shelf categories: %w", err)
		}
		if n > 0 {
			return domain.ErrConflict
		}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO shelf_categories (shelf_id, category_id) VALUES ($1, $2)`, link.ShelfID, link.CategoryID); err != nil {
		return mapWriteError("insert shelf category", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *CabinetRepo) ListShelfCategories(ctx context.Context, shelfID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT category_id FROM shelf_categories WHERE shelf_id = $1 ORDER BY category_id`, shelfID)
	if err != nil {
		return nil, fmt.Errorf("list shelf categories: %w", err)
	}
	defer rows.Close()
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan shelf categories: %w", err)
	}
	return ids, nil
}
