// Package postgres implements a Postgres storage.Repository on pgx v5. A load
// deletes and re-copies the table inside one transaction, using the COPY
// protocol on a connection from a pgxpool pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"retailetl/internal/ddl"
	"retailetl/internal/storage"
)

// Dialect renders Postgres DDL.
var Dialect = ddl.Dialect{
	Quote: ddl.DoubleQuote,
	Types: map[ddl.Kind]string{
		ddl.KindText:      "TEXT",
		ddl.KindFloat:     "DOUBLE PRECISION",
		ddl.KindDate:      "DATE",
		ddl.KindTimestamp: "TIMESTAMP",
	},
	IfNotExists: ddl.CreateIfNotExists,
}

// newPool is a test seam.
var newPool = pgxpool.New

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN, cfg.Table)
	})
	storage.RegisterDDL("postgres", func(def ddl.TableDef) (string, error) {
		return ddl.BuildCreateTableSQL(Dialect, def)
	})
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

// NewRepository opens a pool for dsn and verifies it with a ping.
func NewRepository(ctx context.Context, dsn, table string) (*Repository, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := newPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool, table: table}, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// Begin starts a replace transaction on the table.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	return &loadTx{tx: tx, table: r.table}, nil
}

type loadTx struct {
	tx    pgx.Tx
	table string
}

// Reset deletes all rows of the table.
func (t *loadTx) Reset(ctx context.Context) error {
	_, err := t.tx.Exec(ctx, "DELETE FROM "+Dialect.QuoteFQN(t.table))
	return err
}

// CopyFrom loads rows with COPY FROM STDIN.
func (t *loadTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := t.tx.CopyFrom(ctx, splitFQN(t.table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

func (t *loadTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *loadTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// Close closes the pool.
func (r *Repository) Close() { r.pool.Close() }

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
