package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo histórico de movimientos (solo INSERT y SELECT; un trigger impide UPDATE/DELETE).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create inserta la fila de auditoría y completa ID y Timestamp.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	query := `
		INSERT INTO transactions (timestamp, user_id, product_id, quantity, type, shelf_id)
		VALUES (COALESCE($1, NOW()), $2, $3, $4, $5, $6)
		RETURNING id, timestamp`
	var ts any
	if !t.Timestamp.IsZero() {
		ts = t.Timestamp
	}
	err := r.q.QueryRow(ctx, query, ts, t.UserID, t.ProductID, t.Quantity, t.Type, t.ShelfID).
		Scan(&t.ID, &t.Timestamp)
	if err != nil {
		return mapWriteError("insert transaction", err)
	}
	return nil
}

// List consulta con filtros opcionales, del más reciente al más antiguo.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != nil {
		add("product_id = $%d", *f.ProductID)
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.From != nil {
		add("timestamp >= $%d", *f.From)
	}
	if f.To != nil {
		add("timestamp <= $%d", *f.To)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, timestamp, user_id, product_id, quantity, type, shelf_id FROM transactions`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY timestamp DESC, id DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		var t entity.Transaction
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.UserID, &t.ProductID, &t.Quantity, &t.Type, &t.ShelfID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
