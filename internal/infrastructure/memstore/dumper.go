package memstore

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/jhoicas/almacen-bridge/internal/domain/entity"
)

// Dump vuelca todas las tablas como CSV con cabecera, bajo el lock de lectura.
func (s *Store) Dump(ctx context.Context, open func(table string) (io.Writer, error)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := []struct {
		name string
		rows func() [][]string
	}{
		{"users", s.userRows},
		{"roles", s.roleRows},
		{"user_roles", s.userRoleRows},
		{"categories", s.categoryRows},
		{"cabinets", s.cabinetRows},
		{"shelves", s.shelfRows},
		{"shelf_categories", s.shelfCategoryRows},
		{"products", s.productRows},
		{"transactions", s.transactionRows},
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		w, err := open(t.name)
		if err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(t.rows()); err != nil {
			return err
		}
	}
	return nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func optID(p *int64) string {
	if p == nil {
		return ""
	}
	return itoa(*p)
}

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func (s *Store) userRows() [][]string {
	rows := [][]string{{"id", "username", "password", "rfid_tag", "created_at"}}
	for _, id := range sortedKeys(s.users) {
		u := s.users[id]
		rows = append(rows, []string{itoa(u.ID), u.Username, u.PasswordHash, u.RFIDTag, ts(u.CreatedAt)})
	}
	return rows
}

func (s *Store) roleRows() [][]string {
	rows := [][]string{{"id", "role_name"}}
	for _, name := range []string{entity.RoleAdmin, entity.RoleOperator} {
		if id, ok := s.roles[name]; ok {
			rows = append(rows, []string{itoa(id), name})
		}
	}
	return rows
}

func (s *Store) userRoleRows() [][]string {
	rows := [][]string{{"user_id", "role_id"}}
	for _, uid := range sortedKeys(s.userRoles) {
		for _, name := range s.userRoles[uid] {
			rows = append(rows, []string{itoa(uid), itoa(s.roles[name])})
		}
	}
	return rows
}

func (s *Store) categoryRows() [][]string {
	rows := [][]string{{"id", "name", "description"}}
	for _, id := range sortedKeys(s.categories) {
		c := s.categories[id]
		rows = append(rows, []string{itoa(c.ID), c.Name, c.Description})
	}
	return rows
}

func (s *Store) cabinetRows() [][]string {
	rows := [][]string{{"id", "name"}}
	for _, id := range sortedKeys(s.cabinets) {
		c := s.cabinets[id]
		rows = append(rows, []string{itoa(c.ID), c.Name})
	}
	return rows
}

func (s *Store) shelfRows() [][]string {
	rows := [][]string{{"id", "cabinet_id", "name", "allows_multiple_categories"}}
	for _, id := range sortedKeys(s.shelves) {
		sh := s.shelves[id]
		rows = append(rows, []string{itoa(sh.ID), itoa(sh.CabinetID), sh.Name, strconv.FormatBool(sh.AllowsMultipleCategories)})
	}
	return rows
}

func (s *Store) shelfCategoryRows() [][]string {
	rows := [][]string{{"shelf_id", "category_id"}}
	for _, sid := range sortedKeys(s.shelfCats) {
		for _, cid := range s.shelfCats[sid] {
			rows = append(rows, []string{itoa(sid), itoa(cid)})
		}
	}
	return rows
}

func (s *Store) productRows() [][]string {
	rows := [][]string{{"id", "name", "barcode", "category_id", "rfid_tag", "quantity", "created_at", "updated_at"}}
	for _, id := range sortedKeys(s.products) {
		p := s.products[id]
		rows = append(rows, []string{itoa(p.ID), p.Name, p.Barcode, optID(p.CategoryID), p.RFIDTag,
			itoa(p.Quantity), ts(p.CreatedAt), ts(p.UpdatedAt)})
	}
	return rows
}

func (s *Store) transactionRows() [][]string {
	rows := [][]string{{"id", "timestamp", "user_id", "product_id", "quantity", "type", "shelf_id"}}
	for _, t := range s.transactions {
		rows = append(rows, []string{itoa(t.ID), ts(t.Timestamp), itoa(t.UserID), itoa(t.ProductID),
			itoa(t.Quantity), t.Type, optID(t.ShelfID)})
	}
	return rows
}
