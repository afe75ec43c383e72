// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc driver. A load deletes and re-inserts
// the table inside one transaction, inserting through a prepared statement.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"retailetl/internal/ddl"
	"retailetl/internal/storage"
)

// Dialect renders SQLite DDL. Dates are stored as ISO-8601 text.
var Dialect = ddl.Dialect{
	Quote: ddl.DoubleQuote,
	Types: map[ddl.Kind]string{
		ddl.KindText:      "TEXT",
		ddl.KindFloat:     "REAL",
		ddl.KindDate:      "DATE",
		ddl.KindTimestamp: "DATETIME",
	},
	IfNotExists: ddl.CreateIfNotExists,
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return Open(ctx, cfg.DSN, cfg.Table)
	})
	storage.RegisterDDL("sqlite", func(def ddl.TableDef) (string, error) {
		return ddl.BuildCreateTableSQL(Dialect, def)
	})
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// Open connects to the database at dsn, for example "warehouse.db" or
// "file:warehouse.db?_pragma=busy_timeout(5000)".
func Open(ctx context.Context, dsn, table string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: an in-memory database is per connection, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repository{db: db, table: table}, nil
}

// DB exposes the underlying handle.
func (r *Repository) DB() *sql.DB { return r.db }

// Begin starts a replace transaction on the table.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return &loadTx{tx: tx, table: r.table}, nil
}

type loadTx struct {
	tx    *sql.Tx
	table string
}

// Reset deletes all rows of the table.
func (t *loadTx) Reset(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM "+Dialect.QuoteFQN(t.table)); err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	return nil
}

// CopyFrom inserts rows through a prepared INSERT.
func (t *loadTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := t.tx.PrepareContext(ctx, insertSQL(t.table, columns))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, encodeRow(row)...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

func (t *loadTx) Commit(context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (t *loadTx) Rollback(context.Context) error { return t.tx.Rollback() }

// Exec executes an arbitrary statement. Blank statements are ignored.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = Dialect.Quote(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		Dialect.QuoteFQN(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// encodeRow stores dates as YYYY-MM-DD text so they read back the same way
// the source store's dates do.
func encodeRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
				out[i] = t.Format("2006-01-02")
			} else {
				out[i] = t.Format("2006-01-02 15:04:05")
			}
			continue
		}
		out[i] = v
	}
	return out
}
