package dto

import "time"

// LoadRequest body para POST /load. rfid_tag identifica el producto (o item_id);
// user_rfid identifica al operador cuando no hay sesión JWT.
type LoadRequest struct {
	RFIDTag  string `json:"rfid_tag"`
	ItemID   *int64 `json:"item_id,omitempty"`
	Quantity *int64 `json:"quantity"`
	ShelfID  *int64 `json:"shelf_id,omitempty"`
	UserRFID string `json:"user_rfid,omitempty"`
}

// WithdrawRequest body para POST /get. rfid_tag es la credencial del operador.
type WithdrawRequest struct {
	RFIDTag  string `json:"rfid_tag"`
	ItemID   *int64 `json:"item_id"`
	Quantity *int64 `json:"quantity"`
	ShelfID  *int64 `json:"shelf_id,omitempty"`
}

// MovementResult resultado de una carga o retiro aplicado.
type MovementResult struct {
	Message           string `json:"message"`
	TransactionID     int64  `json:"transaction_id"`
	ProductID         int64  `json:"product_id"`
	Type              string `json:"type"`
	Quantity          int64  `json:"quantity"`
	RemainingQuantity int64  `json:"remaining_quantity"`
}

// MovementEvent evento publicado tras el commit de un movimiento de stock.
type MovementEvent struct {
	EventID           string    `json:"event_id"`
	TransactionID     int64     `json:"transaction_id"`
	ProductID         int64     `json:"product_id"`
	UserID            int64     `json:"user_id"`
	ShelfID           *int64    `json:"shelf_id,omitempty"`
	Type              string    `json:"type"`
	Quantity          int64     `json:"quantity"`
	RemainingQuantity int64     `json:"remaining_quantity"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// TransactionFilterRequest query de GET /transactions y /transactions/report.
type TransactionFilterRequest struct {
	ProductID *int64     `query:"product_id"`
	UserID    *int64     `query:"user_id"`
	Type      string     `query:"type"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
	PageRequest
}

// TransactionResponse fila del histórico de movimientos.
type TransactionResponse struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int64     `json:"quantity"`
	Type        string    `json:"type"`
	ShelfID     *int64    `json:"shelf_id,omitempty"`
}

// TransactionListResponse lista paginada de movimientos.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}
