package postgres

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-bridge/internal/application/backup"
)

var _ backup.Dumper = (*Dumper)(nil)

// Dumper vuelca cada tabla con COPY ... TO STDOUT (CSV con cabecera)
// dentro de una transacción READ ONLY REPEATABLE READ: todas las tablas ven la misma instantánea.
type Dumper struct {
	pool *pgxpool.Pool
}

// NewDumper construye el volcador.
func NewDumper(pool *pgxpool.Pool) *Dumper {
	return &Dumper{pool: pool}
}

// Dump escribe cada tabla en el destino que devuelve open.
func (d *Dumper) Dump(ctx context.Context, open func(table string) (io.Writer, error)) error {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range dumpTables {
		w, err := open(table)
		if err != nil {
			return err
		}
		sql := "COPY " + pgx.Identifier{table}.Sanitize() + " TO STDOUT WITH (FORMAT csv, HEADER true)"
		if _, err := tx.Conn().PgConn().CopyTo(ctx, w, sql); err != nil {
			return fmt.Errorf("copy %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}
