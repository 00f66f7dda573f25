// Package memstore implementa los puertos de persistencia en memoria.
// Se usa con DB_DRIVER=memory y como doble de prueba del almacén relacional.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
	"github.com/jhoicas/almacen-bridge/internal/domain/repository"
)

// Store estado completo del almacén. Un único RWMutex protege todas las tablas;
// TxRunner toma el lock de escritura durante toda la transacción (aislamiento serializable).
type Store struct {
	mu sync.RWMutex

	users     map[int64]*entity.User
	roles     map[string]int64
	userRoles map[int64][]string

	categories   map[int64]*entity.Category
	cabinets     map[int64]*entity.Cabinet
	shelves      map[int64]*entity.Shelf
	shelfCats    map[int64][]int64
	products     map[int64]*entity.Product
	transactions []*entity.Transaction

	seq map[string]int64
	now func() time.Time
}

// New crea un almacén vacío con los roles base.
func New() *Store {
	s := &Store{now: time.Now}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[int64]*entity.User)
	s.roles = make(map[string]int64)
	s.userRoles = make(map[int64][]string)
	s.categories = make(map[int64]*entity.Category)
	s.cabinets = make(map[int64]*entity.Cabinet)
	s.shelves = make(map[int64]*entity.Shelf)
	s.shelfCats = make(map[int64][]int64)
	s.products = make(map[int64]*entity.Product)
	s.transactions = nil
	s.seq = make(map[string]int64)
	s.seedRoles()
}

func (s *Store) seedRoles() {
	for _, name := range []string{entity.RoleAdmin, entity.RoleOperator} {
		if _, ok := s.roles[name]; !ok {
			s.roles[name] = s.next("roles")
		}
	}
}

func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// Migrate es idempotente: garantiza los roles base sin tocar los datos.
func (s *Store) Migrate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedRoles()
	return nil
}

// Users repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return &UserRepo{s: s} }

// Products repositorio de productos (fuera de transacción).
func (s *Store) Products() repository.ProductRepository { return &ProductRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() repository.CategoryRepository { return &CategoryRepo{s: s} }

// Cabinets repositorio de armarios y estantes.
func (s *Store) Cabinets() repository.CabinetRepository { return &CabinetRepo{s: s} }

// Transactions repositorio del histórico (fuera de transacción).
func (s *Store) Transactions() repository.TransactionRepository { return &TransactionRepo{s: s} }
