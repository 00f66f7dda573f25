package memstore

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/almacen-bridge/internal/domain"
	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (s *Store) userView(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Roles = append([]string{}, s.userRoles[u.ID]...)
	return &cp
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Username == u.Username {
			return errDuplicate("users", "username")
		}
		if u.RFIDTag != "" && other.RFIDTag == u.RFIDTag {
			return errDuplicate("users", "rfid_tag")
		}
	}
	u.ID = s.next("users")
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	cp := *u
	cp.Roles = nil
	s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.userView(r.s.users[id]), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return r.s.userView(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByRFID(_ context.Context, rfidTag string) (*entity.User, error) {
	if rfidTag == "" {
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.RFIDTag == rfidTag {
			return r.s.userView(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := sortedKeys(r.s.users)
	out := make([]*entity.User, 0, len(ids))
	for _, id := range page(ids, limit, offset) {
		out = append(out, r.s.userView(r.s.users[id]))
	}
	return out, nil
}

func (r *UserRepo) AssignRole(_ context.Context, userID int64, roleName string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return errForeignKey("user_roles", "user_id")
	}
	if _, ok := s.roles[roleName]; !ok {
		return errForeignKey("user_roles", "role_id")
	}
	if slices.Contains(s.userRoles[userID], roleName) {
		return nil
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleName)
	return nil
}

// ProductRepo implementa repository.ProductRepository fuera de transacción.
type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (s *Store) productByRFID(tag string) *entity.Product {
	if tag == "" {
		return nil
	}
	for _, p := range s.products {
		if p.RFIDTag == tag {
			return p
		}
	}
	return nil
}

func (s *Store) listProducts(limit, offset int) []*entity.Product {
	ids := sortedKeys(s.products)
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range page(ids, limit, offset) {
		out = append(out, copyProduct(s.products[id]))
	}
	return out
}

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.products {
		if p.Barcode != "" && other.Barcode == p.Barcode {
			return errDuplicate("products", "barcode")
		}
		if p.RFIDTag != "" && other.RFIDTag == p.RFIDTag {
			return errDuplicate("products", "rfid_tag")
		}
	}
	if p.CategoryID != nil {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return errForeignKey("products", "category_id")
		}
	}
	if p.Quantity < 0 {
		return errNegativeQuantity
	}
	now := s.now().UTC()
	p.ID = s.next("products")
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = copyProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyProduct(r.s.products[id]), nil
}

func (r *ProductRepo) GetByRFID(_ context.Context, rfidTag string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyProduct(r.s.productByRFID(rfidTag)), nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listProducts(limit, offset), nil
}

// GetForUpdate fuera de una transacción no bloquea nada; equivale a GetByID.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) UpdateQuantity(_ context.Context, id, quantity int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return errNotFound("product", id)
	}
	if quantity < 0 {
		return errNegativeQuantity
	}
	p.Quantity = quantity
	p.UpdatedAt = s.now().UTC()
	return nil
}

// CategoryRepo implementa repository.CategoryRepository.
type CategoryRepo struct{ s *Store }

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.categories {
		if other.Name == c.Name {
			return errDuplicate("categories", "name")
		}
	}
	c.ID = s.next("categories")
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, id := range sortedKeys(r.s.categories) {
		cp := *r.s.categories[id]
		out = append(out, &cp)
	}
	return out, nil
}

// CabinetRepo implementa repository.CabinetRepository.
type CabinetRepo struct{ s *Store }

var _ repository.CabinetRepository = (*CabinetRepo)(nil)

func (r *CabinetRepo) Create(_ context.Context, c *entity.Cabinet) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.cabinets {
		if other.Name == c.Name {
			return errDuplicate("cabinets", "name")
		}
	}
	c.ID = s.next("cabinets")
	cp := *c
	s.cabinets[c.ID] = &cp
	return nil
}

func (r *CabinetRepo) GetByID(_ context.Context, id int64) (*entity.Cabinet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cabinets[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CabinetRepo) List(_ context.Context) ([]*entity.Cabinet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Cabinet, 0, len(r.s.cabinets))
	for _, id := range sortedKeys(r.s.cabinets) {
		cp := *r.s.cabinets[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *CabinetRepo) CreateShelf(_ context.Context, sh *entity.Shelf) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cabinets[sh.CabinetID]; !ok {
		return errForeignKey("shelves", "cabinet_id")
	}
	sh.ID = s.next("shelves")
	cp := *sh
	s.shelves[sh.ID] = &cp
	return nil
}

func (r *CabinetRepo) GetShelf(_ context.Context, id int64) (*entity.Shelf, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sh, ok := r.s.shelves[id]
	if !ok {
		return nil, nil
	}
	cp := *sh
	return &cp, nil
}

func (r *CabinetRepo) ListShelves(_ context.Context, cabinetID int64) ([]*entity.Shelf, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Shelf, 0)
	for _, id := range sortedKeys(r.s.shelves) {
		if sh := r.s.shelves[id]; sh.CabinetID == cabinetID {
			cp := *sh
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *CabinetRepo) AddShelfCategory(_ context.Context, link entity.ShelfCategory) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shelves[link.ShelfID]; !ok {
		return errForeignKey("shelf_categories", "shelf_id")
	}
	if _, ok := s.categories[link.CategoryID]; !ok {
		return errForeignKey("shelf_categories", "category_id")
	}
	if slices.Contains(s.shelfCats[link.ShelfID], link.CategoryID) {
		return errDuplicate("shelf_categories", "category_id")
	}
	if !s.shelves[link.ShelfID].AllowsMultipleCategories && len(s.shelfCats[link.ShelfID]) > 0 {
		return domain.ErrConflict
	}
	s.shelfCats[link.ShelfID] = append(s.shelfCats[link.ShelfID], link.CategoryID)
	return nil
}

func (r *CabinetRepo) ListShelfCategories(_ context.Context, shelfID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]int64{}, r.s.shelfCats[shelfID]...)
	slices.Sort(out)
	return out, nil
}

// TransactionRepo implementa repository.TransactionRepository fuera de transacción.
type TransactionRepo struct{ s *Store }

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

func (s *Store) checkTransactionRefs(t *entity.Transaction) error {
	if _, ok := s.users[t.UserID]; !ok {
		return errForeignKey("transactions", "user_id")
	}
	if _, ok := s.products[t.ProductID]; !ok {
		return errForeignKey("transactions", "product_id")
	}
	if t.ShelfID != nil {
		if _, ok := s.shelves[*t.ShelfID]; !ok {
			return errForeignKey("transactions", "shelf_id")
		}
	}
	return nil
}

func (r *TransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransactionRefs(t); err != nil {
		return err
	}
	t.ID = s.next("transactions")
	if t.Timestamp.IsZero() {
		t.Timestamp = s.now().UTC()
	}
	cp := *t
	s.transactions = append(s.transactions, &cp)
	return nil
}

func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return filterTransactions(r.s.transactions, f), nil
}

// filterTransactions aplica el filtro y ordena del más reciente al más antiguo.
func filterTransactions(all []*entity.Transaction, f repository.TransactionFilter) []*entity.Transaction {
	out := make([]*entity.Transaction, 0)
	for _, t := range all {
		if f.ProductID != nil && t.ProductID != *f.ProductID {
			continue
		}
		if f.UserID != nil && t.UserID != *f.UserID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.From != nil && t.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && t.Timestamp.After(*f.To) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// page recorta s; limit <= 0 devuelve todo desde offset.
func page[T any](s []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s) {
		return s[:0]
	}
	s = s[offset:]
	if limit > 0 && limit < len(s) {
		s = s[:limit]
	}
	return s
}
