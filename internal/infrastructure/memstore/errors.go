package memstore

import (
	"errors"
	"fmt"

	"github.com/jhoicas/almacen-bridge/internal/domain"
)

var (
	errReadOnlyInTx     = errors.New("memstore: operación no soportada dentro de la transacción")
	errNegativeQuantity = fmt.Errorf("memstore: quantity negativa: %w", domain.ErrInvalidInput)
)

func errNotFound(table string, id int64) error {
	return fmt.Errorf("memstore: %s %d: %w", table, id, domain.ErrNotFound)
}

func errDuplicate(table, field string) error {
	return fmt.Errorf("memstore: %s.%s: %w", table, field, domain.ErrDuplicate)
}

// errForeignKey equivale a una violación de FK en Postgres (23503).
func errForeignKey(table, field string) error {
	return fmt.Errorf("memstore: %s.%s no referencia una fila existente: %w", table, field, domain.ErrInvalidInput)
}
