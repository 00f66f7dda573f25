package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

// Engine motor de transacciones de inventario: único dueño de Product.Quantity.
// Cada movimiento bloquea el producto (mutex por clave + SELECT FOR UPDATE),
// actualiza la cantidad e inserta la fila de auditoría en la misma transacción.
type Engine struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	cabinetRepo repository.CabinetRepository
	actors      ActorResolver
	publisher   MovementPublisher
	renderer    ReportRenderer
	locks       *keyedLocker
	log         zerolog.Logger
	now         func() time.Time
}

// Option configura dependencias opcionales del motor.
type Option func(*Engine)

// WithPublisher publica cada movimiento confirmado.
func WithPublisher(p MovementPublisher) Option { return func(e *Engine) { e.publisher = p } }

// WithRenderer habilita Report.
func WithRenderer(r ReportRenderer) Option { return func(e *Engine) { e.renderer = r } }

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine construye el motor.
func NewEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
	cabinetRepo repository.CabinetRepository,
	actors ActorResolver,
	log zerolog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		txRunner:    txRunner,
		productRepo: productRepo,
		txRepo:      txRepo,
		cabinetRepo: cabinetRepo,
		actors:      actors,
		locks:       newKeyedLocker(),
		log:         log.With().Str("component", "inventory").Logger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadInput entrada de una carga. El producto se identifica por RFID o por id;
// el operador por RFID o por id de sesión.
type LoadInput struct {
	ProductID   int64
	ProductRFID string
	Quantity    int64
	ShelfID     *int64
	ActorRFID   string
	ActorUserID int64
}

// WithdrawInput entrada de un retiro. El operador siempre se identifica por RFID.
type WithdrawInput struct {
	ProductID   int64
	ProductRFID string
	Quantity    int64
	ShelfID     *int64
	ActorRFID   string
}

type movement struct {
	typ       string
	productID int64
	userID    int64
	quantity  int64
	shelfID   *int64
}

// Load suma quantity al producto y registra una transacción "load".
func (e *Engine) Load(ctx context.Context, in LoadInput) (*dto.MovementResult, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	userID, err := e.resolveLoadActor(ctx, in)
	if err != nil {
		return nil, err
	}
	product, err := e.resolveProduct(ctx, in.ProductID, in.ProductRFID)
	if err != nil {
		return nil, err
	}
	if err := e.checkShelf(ctx, in.ShelfID); err != nil {
		return nil, err
	}
	return e.apply(ctx, movement{
		typ:       entity.TransactionTypeLoad,
		productID: product.ID,
		userID:    userID,
		quantity:  in.Quantity,
		shelfID:   in.ShelfID,
	})
}

// Withdraw descuenta quantity si hay stock suficiente y registra una transacción "get".
// Con stock insuficiente no modifica nada y devuelve domain.ErrInsufficientStock.
func (e *Engine) Withdraw(ctx context.Context, in WithdrawInput) (*dto.MovementResult, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	userID, err := e.actors.AuthenticateRFID(ctx, in.ActorRFID)
	if err != nil {
		return nil, err
	}
	product, err := e.resolveProduct(ctx, in.ProductID, in.ProductRFID)
	if err != nil {
		return nil, err
	}
	if err := e.checkShelf(ctx, in.ShelfID); err != nil {
		return nil, err
	}
	return e.apply(ctx, movement{
		typ:       entity.TransactionTypeGet,
		productID: product.ID,
		userID:    userID,
		quantity:  in.Quantity,
		shelfID:   in.ShelfID,
	})
}

// apply serializa por producto y ejecuta check-then-act dentro de una transacción.
func (e *Engine) apply(ctx context.Context, m movement) (*dto.MovementResult, error) {
	var (
		record    *entity.Transaction
		remaining int64
	)

	err := e.locked(ctx, m.productID, func() error {
		return e.txRunner.Run(ctx, func(productRepo repository.ProductRepository, txRepo repository.TransactionRepository) error {
			// Bloquea la fila (SELECT FOR UPDATE) para evitar condiciones de carrera entre procesos
			p, err := productRepo.GetForUpdate(ctx, m.productID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.ErrNotFound
			}
			switch m.typ {
			case entity.TransactionTypeLoad:
				if p.Quantity > math.MaxInt64-m.quantity {
					return domain.ErrInvalidInput
				}
				remaining = p.Quantity + m.quantity
			case entity.TransactionTypeGet:
				if p.Quantity < m.quantity {
					return domain.ErrInsufficientStock
				}
				remaining = p.Quantity - m.quantity
			default:
				return domain.ErrInvalidInput
			}
			if err := productRepo.UpdateQuantity(ctx, p.ID, remaining); err != nil {
				return err
			}
			record = &entity.Transaction{
				Timestamp: e.now().UTC(),
				UserID:    m.userID,
				ProductID: p.ID,
				Quantity:  m.quantity,
				Type:      m.typ,
				ShelfID:   m.shelfID,
			}
			return txRepo.Create(ctx, record)
		})
	})

	if err != nil {
		e.log.Warn().Err(err).
			Int64("product_id", m.productID).
			Int64("user_id", m.userID).
			Int64("quantity", m.quantity).
			Str("type", m.typ).
			Msg("movimiento rechazado")
		return nil, err
	}

	e.log.Info().
		Int64("transaction_id", record.ID).
		Int64("product_id", m.productID).
		Int64("user_id", m.userID).
		Int64("quantity", m.quantity).
		Int64("remaining", remaining).
		Str("type", m.typ).
		Msg("movimiento aplicado")

	e.publish(ctx, record, remaining)

	msg := "Item loaded successfully"
	if m.typ == entity.TransactionTypeGet {
		msg = "Item retrieved successfully"
	}
	return &dto.MovementResult{
		Message:           msg,
		TransactionID:     record.ID,
		ProductID:         record.ProductID,
		Type:              record.Type,
		Quantity:          record.Quantity,
		RemainingQuantity: remaining,
	}, nil
}

// locked ejecuta fn con el producto bloqueado. La espera respeta ctx y el bloqueo
// se libera aunque fn entre en pánico.
func (e *Engine) locked(ctx context.Context, productID int64, fn func() error) error {
	unlock, err := e.locks.Lock(ctx, productID)
	if err != nil {
		return fmt.Errorf("esperando producto %d: %w", productID, err)
	}
	defer unlock()
	return fn()
}

// publish es best effort: el movimiento ya está confirmado.
func (e *Engine) publish(ctx context.Context, rec *entity.Transaction, remaining int64) {
	if e.publisher == nil {
		return
	}
	ev := dto.MovementEvent{
		EventID:           uuid.New().String(),
		TransactionID:     rec.ID,
		ProductID:         rec.ProductID,
		UserID:            rec.UserID,
		ShelfID:           rec.ShelfID,
		Type:              rec.Type,
		Quantity:          rec.Quantity,
		RemainingQuantity: remaining,
		OccurredAt:        rec.Timestamp,
	}
	if err := e.publisher.PublishMovement(context.WithoutCancel(ctx), ev); err != nil {
		e.log.Warn().Err(err).Int64("transaction_id", rec.ID).Msg("no se pudo publicar el movimiento")
	}
}

func (e *Engine) resolveLoadActor(ctx context.Context, in LoadInput) (int64, error) {
	if strings.TrimSpace(in.ActorRFID) != "" {
		return e.actors.AuthenticateRFID(ctx, in.ActorRFID)
	}
	if in.ActorUserID <= 0 {
		return 0, domain.ErrUnauthorized
	}
	ok, err := e.actors.UserExists(ctx, in.ActorUserID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	return in.ActorUserID, nil
}

func (e *Engine) resolveProduct(ctx context.Context, id int64, rfid string) (*entity.Product, error) {
	var (
		p   *entity.Product
		err error
	)
	switch rfid = strings.TrimSpace(rfid); {
	case rfid != "":
		p, err = e.productRepo.GetByRFID(ctx, rfid)
	case id > 0:
		p, err = e.productRepo.GetByID(ctx, id)
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (e *Engine) checkShelf(ctx context.Context, shelfID *int64) error {
	if shelfID == nil {
		return nil
	}
	shelf, err := e.cabinetRepo.GetShelf(ctx, *shelfID)
	if err != nil {
		return err
	}
	if shelf == nil {
		return fmt.Errorf("shelf %d: %w", *shelfID, domain.ErrNotFound)
	}
	return nil
}

// ListTransactions consulta el histórico de movimientos (solo lectura).
func (e *Engine) ListTransactions(ctx context.Context, in dto.TransactionFilterRequest) (*dto.TransactionListResponse, error) {
	filter, err := toFilter(in)
	if err != nil {
		return nil, err
	}
	rows, err := e.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(rows))
	for _, t := range rows {
		items = append(items, toTransactionResponse(t))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Report genera el PDF del histórico filtrado, con el nombre de cada producto.
func (e *Engine) Report(ctx context.Context, in dto.TransactionFilterRequest) ([]byte, error) {
	if e.renderer == nil {
		return nil, errors.New("inventory: report renderer no configurado")
	}
	list, err := e.ListTransactions(ctx, in)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string)
	for i := range list.Items {
		id := list.Items[i].ProductID
		name, ok := names[id]
		if !ok {
			p, err := e.productRepo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if p != nil {
				name = p.Name
			}
			names[id] = name
		}
		list.Items[i].ProductName = name
	}
	return e.renderer.RenderTransactions(list.Items, e.now())
}

const maxListLimit = 500

func toFilter(in dto.TransactionFilterRequest) (repository.TransactionFilter, error) {
	in.DefaultPage()
	if in.Limit > maxListLimit {
		in.Limit = maxListLimit
	}
	switch in.Type {
	case "", entity.TransactionTypeLoad, entity.TransactionTypeGet:
	default:
		return repository.TransactionFilter{}, domain.ErrInvalidInput
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return repository.TransactionFilter{}, domain.ErrInvalidInput
	}
	return repository.TransactionFilter{
		ProductID: in.ProductID,
		UserID:    in.UserID,
		Type:      in.Type,
		From:      in.From,
		To:        in.To,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}, nil
}

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        t.ID,
		Timestamp: t.Timestamp,
		UserID:    t.UserID,
		ProductID: t.ProductID,
		Quantity:  t.Quantity,
		Type:      t.Type,
		ShelfID:   t.ShelfID,
	}
}
