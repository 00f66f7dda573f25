package memstore

import (
	"context"

	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

// TxRunner ejecuta fn con repositorios que escriben en un área temporal;
// los cambios se aplican solo si fn devuelve nil.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

type txState struct {
	s          *Store
	quantities map[int64]int64
	records    []*entity.Transaction
	nextTxID   int64
}

// Run inicia la transacción, ejecuta fn y confirma o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := &txState{s: r.s, quantities: make(map[int64]int64), nextTxID: r.s.seq["transactions"]}
	if err := fn(&txProductRepo{st: st}, &txTransactionRepo{st: st}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Commit
	now := r.s.now().UTC()
	for id, q := range st.quantities {
		p := r.s.products[id]
		p.Quantity = q
		p.UpdatedAt = now
	}
	r.s.transactions = append(r.s.transactions, st.records...)
	r.s.seq["transactions"] = st.nextTxID
	return nil
}

// txProductRepo ve los cambios pendientes de su transacción. El lock ya está tomado.
type txProductRepo struct {
	st *txState
}

var _ repository.ProductRepository = (*txProductRepo)(nil)

func (r *txProductRepo) view(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	cp := *p
	if q, ok := r.st.quantities[p.ID]; ok {
		cp.Quantity = q
	}
	return &cp
}

func (r *txProductRepo) Create(_ context.Context, p *entity.Product) error {
	return errReadOnlyInTx
}

func (r *txProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	return r.view(r.st.s.products[id]), nil
}

func (r *txProductRepo) GetByRFID(_ context.Context, rfidTag string) (*entity.Product, error) {
	return r.view(r.st.s.productByRFID(rfidTag)), nil
}

func (r *txProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	out := r.st.s.listProducts(limit, offset)
	for i := range out {
		out[i] = r.view(out[i])
	}
	return out, nil
}

func (r *txProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *txProductRepo) UpdateQuantity(_ context.Context, id, quantity int64) error {
	if _, ok := r.st.s.products[id]; !ok {
		return errNotFound("product", id)
	}
	if quantity < 0 {
		return errNegativeQuantity
	}
	r.st.quantities[id] = quantity
	return nil
}

type txTransactionRepo struct {
	st *txState
}

var _ repository.TransactionRepository = (*txTransactionRepo)(nil)

func (r *txTransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	if err := r.st.s.checkTransactionRefs(t); err != nil {
		return err
	}
	r.st.nextTxID++
	t.ID = r.st.nextTxID
	if t.Timestamp.IsZero() {
		t.Timestamp = r.st.s.now().UTC()
	}
	cp := *t
	r.st.records = append(r.st.records, &cp)
	return nil
}

func (r *txTransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	all := append(append([]*entity.Transaction{}, r.st.s.transactions...), r.st.records...)
	return filterTransactions(all, f), nil
}
