package entity

import "time"

// Product representa un artículo del almacén.
// Quantity solo la modifica el motor de transacciones de inventario y nunca es negativa.
type Product struct {
	ID         int64
	Name       string
	Barcode    string
	CategoryID *int64
	RFIDTag    string
	Quantity   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
