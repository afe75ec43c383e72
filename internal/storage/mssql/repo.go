// Package mssql implements a Microsoft SQL Server storage.Repository using
// the go-mssqldb bulk copy API.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssqldb "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"retailetl/internal/ddl"
	"retailetl/internal/storage"
)

// Dialect renders SQL Server DDL. SQL Server has no CREATE TABLE IF NOT
// EXISTS, so the statement is guarded with OBJECT_ID.
var Dialect = ddl.Dialect{
	Quote: quoteIdent,
	Types: map[ddl.Kind]string{
		ddl.KindText:      "NVARCHAR(4000)",
		ddl.KindFloat:     "FLOAT",
		ddl.KindDate:      "DATE",
		ddl.KindTimestamp: "DATETIME2",
	},
	IfNotExists: func(quotedTable, create string) string {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s", strings.ReplaceAll(quotedTable, "'", "''"), create)
	},
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN, cfg.Table)
	})
	storage.RegisterDDL("mssql", func(def ddl.TableDef) (string, error) {
		return ddl.BuildCreateTableSQL(Dialect, def)
	})
}

// sqlOpen is a test seam.
var sqlOpen = sql.Open

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository validates dsn, connects and pings.
func NewRepository(ctx context.Context, dsn, table string) (*Repository, error) {
	if _, err := msdsn.Parse(dsn); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sqlOpen("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repository{db: db, table: table}, nil
}

// Exec executes a statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// Begin starts a replace transaction on the table.
func (r *Repository) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &loadTx{tx: tx, table: r.table}, nil
}

type loadTx struct {
	tx    *sql.Tx
	table string
}

// Reset deletes all rows of the table.
func (t *loadTx) Reset(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, "DELETE FROM "+Dialect.QuoteFQN(t.table))
	return err
}

// CopyFrom bulk-inserts one batch with a CopyIn statement.
func (t *loadTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := t.tx.PrepareContext(ctx, mssqldb.CopyIn(t.table, mssqldb.BulkOptions{Tablock: true}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (t *loadTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *loadTx) Rollback(context.Context) error { return t.tx.Rollback() }

// Close closes the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

// quoteIdent brackets one identifier segment, doubling closing brackets.
func quoteIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }
