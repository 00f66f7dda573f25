package dto

import "time"

// CreateProductRequest entrada para crear un producto. La cantidad siempre inicia en 0:
// el stock solo cambia con /load y /get.
type CreateProductRequest struct {
	Name       string `json:"name" form:"name"`
	Barcode    string `json:"barcode" form:"barcode"`
	CategoryID *int64 `json:"category_id,omitempty" form:"category_id"`
	RFIDTag    string `json:"rfid_tag" form:"rfid_tag"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Barcode    string    `json:"barcode"`
	CategoryID *int64    `json:"category_id,omitempty"`
	RFIDTag    string    `json:"rfid_tag"`
	Quantity   int64     `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
