package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
)

// TransactionFilter criterios de consulta del histórico de movimientos.
type TransactionFilter struct {
	ProductID *int64
	UserID    *int64
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TransactionRepository puerto del registro de auditoría. Solo inserta y consulta: las filas son inmutables.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
}
