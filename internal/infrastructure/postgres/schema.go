package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaPostgres es idempotente: se aplica en cada arranque y desde /reset-database.
const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
    id          BIGSERIAL PRIMARY KEY,
    username    TEXT NOT NULL UNIQUE,
    password    TEXT NOT NULL,
    rfid_tag    TEXT UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS roles (
    id          BIGSERIAL PRIMARY KEY,
    role_name   TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id     BIGINT NOT NULL REFERENCES users(id),
    role_id     BIGINT NOT NULL REFERENCES roles(id),
    PRIMARY KEY (user_id, role_id)
);

CREATE TABLE IF NOT EXISTS categories (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cabinets (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS shelves (
    id                          BIGSERIAL PRIMARY KEY,
    cabinet_id                  BIGINT NOT NULL REFERENCES cabinets(id),
    name                        TEXT NOT NULL,
    allows_multiple_categories  BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_shelves_cabinet ON shelves(cabinet_id);

CREATE TABLE IF NOT EXISTS shelf_categories (
    shelf_id    BIGINT NOT NULL REFERENCES shelves(id),
    category_id BIGINT NOT NULL REFERENCES categories(id),
    PRIMARY KEY (shelf_id, category_id)
);

CREATE TABLE IF NOT EXISTS products (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    barcode     TEXT UNIQUE,
    category_id BIGINT REFERENCES categories(id),
    rfid_tag    TEXT UNIQUE,
    quantity    BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS transactions (
    id          BIGSERIAL PRIMARY KEY,
    timestamp   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    user_id     BIGINT NOT NULL REFERENCES users(id),
    product_id  BIGINT NOT NULL REFERENCES products(id),
    quantity    BIGINT NOT NULL CHECK (quantity > 0),
    type        TEXT NOT NULL CHECK (type IN ('load', 'get')),
    shelf_id    BIGINT REFERENCES shelves(id)
);
CREATE INDEX IF NOT EXISTS idx_transactions_product ON transactions(product_id, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, timestamp DESC);

CREATE OR REPLACE FUNCTION transactions_append_only() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION 'transactions es de solo inserción';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_transactions_append_only ON transactions;
CREATE TRIGGER trg_transactions_append_only
    BEFORE UPDATE OR DELETE ON transactions
    FOR EACH ROW EXECUTE FUNCTION transactions_append_only();

INSERT INTO roles (role_name) VALUES ('admin'), ('operator')
ON CONFLICT (role_name) DO NOTHING;
`

// dumpTables orden de volcado en las copias (padres antes que hijos).
var dumpTables = []string{
	"users", "roles", "user_roles", "categories", "cabinets",
	"shelves", "shelf_categories", "products", "transactions",
}

// Migrator aplica el esquema sobre el pool.
type Migrator struct {
	pool *pgxpool.Pool
}

// NewMigrator construye el migrador.
func NewMigrator(pool *pgxpool.Pool) *Migrator {
	return &Migrator{pool: pool}
}

// Migrate aplica el esquema completo en una transacción. Es seguro repetirlo.
func (m *Migrator) Migrate(ctx context.Context) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Sin argumentos pgx usa el protocolo simple y admite varias sentencias.
	if _, err := tx.Exec(ctx, schemaPostgres); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migrate: %w", err)
	}
	return nil
}
