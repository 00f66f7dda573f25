package entity

import "time"

// Tipos de movimiento de stock.
const (
	TransactionTypeLoad = "load" // entrada
	TransactionTypeGet  = "get"  // salida
)

// Transaction registro de auditoría inmutable; una fila por cada mutación de stock.
type Transaction struct {
	ID        int64
	Timestamp time.Time
	UserID    int64
	ProductID int64
	Quantity  int64
	Type      string
	ShelfID   *int64
}
