package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/inventory"
	"github.com/jhoicas/almacen-bridge/internal/domain"
)

// InventoryHandler cargas/retiros de stock y consulta del histórico.
type InventoryHandler struct {
	engine *inventory.Engine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.Engine) *InventoryHandler {
	return &InventoryHandler{engine: engine}
}

// Load godoc
// @Summary      Cargar stock
// @Description  rfid_tag identifica el producto (o item_id). El operador se toma de la sesión o de user_rfid.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoadRequest  true  "rfid_tag/item_id, quantity, user_rfid"
// @Success      200   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /load [post]
func (h *InventoryHandler) Load(c *fiber.Ctx) error {
	var in dto.LoadRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Quantity == nil {
		return badRequest(c, "VALIDATION", "quantity es requerido")
	}
	if strings.TrimSpace(in.RFIDTag) == "" && in.ItemID == nil {
		return badRequest(c, "VALIDATION", "rfid_tag o item_id es requerido")
	}
	out, err := h.engine.Load(c.UserContext(), inventory.LoadInput{
		ProductID:   deref(in.ItemID),
		ProductRFID: in.RFIDTag,
		Quantity:    *in.Quantity,
		ShelfID:     in.ShelfID,
		ActorRFID:   in.UserRFID,
		ActorUserID: GetUserID(c),
	})
	if err != nil {
		notFound := "RFID tag not found"
		if in.ItemID != nil {
			notFound = "Item not found"
		}
		return fail(c, err, errorTexts{
			domain.ErrNotFound:     notFound,
			domain.ErrUnauthorized: "Unauthorized RFID",
			domain.ErrInvalidInput: "Invalid quantity",
		})
	}
	return c.JSON(out)
}

// Withdraw godoc
// @Summary      Retirar stock
// @Description  rfid_tag es la credencial del operador; falla sin modificar nada si no hay stock suficiente.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawRequest  true  "rfid_tag, item_id, quantity"
// @Success      200   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /get [post]
func (h *InventoryHandler) Withdraw(c *fiber.Ctx) error {
	var in dto.WithdrawRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Quantity == nil || in.ItemID == nil {
		return badRequest(c, "VALIDATION", "item_id y quantity son requeridos")
	}
	out, err := h.engine.Withdraw(c.UserContext(), inventory.WithdrawInput{
		ProductID: *in.ItemID,
		Quantity:  *in.Quantity,
		ShelfID:   in.ShelfID,
		ActorRFID: in.RFIDTag,
	})
	if err != nil {
		return fail(c, err, errorTexts{
			domain.ErrUnauthorized:      "Unauthorized RFID",
			domain.ErrInsufficientStock: "Not enough stock",
			domain.ErrNotFound:          "Item not found",
			domain.ErrInvalidInput:      "Invalid quantity",
		})
	}
	return c.JSON(out)
}

// ListTransactions godoc
// @Summary      Histórico de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  int     false  "Producto"
// @Param        user_id     query  int     false  "Operador"
// @Param        type        query  string  false  "load | get"
// @Param        from        query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to          query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	out, err := h.engine.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte PDF de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        product_id  query  int     false  "Producto"
// @Param        type        query  string  false  "load | get"
// @Param        from        query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to          query  string  false  "RFC3339 o YYYY-MM-DD"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /transactions/report [get]
func (h *InventoryHandler) Report(c *fiber.Ctx) error {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	pdf, err := h.engine.Report(c.UserContext(), filter)
	if err != nil {
		return fail(c, err, nil)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="movimientos.pdf"`)
	return c.Send(pdf)
}

func parseTransactionFilter(c *fiber.Ctx) (dto.TransactionFilterRequest, error) {
	var f dto.TransactionFilterRequest
	var err error
	if f.ProductID, err = queryInt64(c, "product_id"); err != nil {
		return f, err
	}
	if f.UserID, err = queryInt64(c, "user_id"); err != nil {
		return f, err
	}
	f.Type = strings.ToLower(strings.TrimSpace(c.Query("type")))
	if f.From, err = queryTime(c, "from", false); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return f, err
	}
	f.Limit = c.QueryInt("limit", 0)
	f.Offset = c.QueryInt("offset", 0)
	return f, nil
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" inválido")
	}
	return &n, nil
}

// queryTime acepta RFC3339 o una fecha; una fecha como cota superior cubre el día completo.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+": formato esperado RFC3339 o YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
