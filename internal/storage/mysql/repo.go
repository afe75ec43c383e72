// Package mysql implements a MySQL storage.Repository using go-sql-driver.
// A load deletes and re-inserts the table inside one transaction, writing
// each batch as multi-row INSERT statements.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"retailetl/internal/ddl"
	"retailetl/internal/storage"
)

// Dialect renders MySQL DDL.
var Dialect = ddl.Dialect{
	Quote: quoteIdent,
	Types: map[ddl.Kind]string{
		ddl.KindText:      "TEXT",
		ddl.KindFloat:     "DOUBLE",
		ddl.KindDate:      "DATE",
		ddl.KindTimestamp: "DATETIME",
	},
	IfNotExists: ddl.CreateIfNotExists,
}

// maxPlaceholders stays under MySQL's 65535 prepared statement parameter limit.
const maxPlaceholders = 65000

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN, cfg.Table)
	})
	storage.RegisterDDL("mysql", func(def ddl.TableDef) (string, error) {
		return ddl.BuildCreateTableSQL(Dialect, def)
	})
}

// sqlOpen is a test seam.
var sqlOpen = sql.Open

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository parses dsn, forces parseTime so DATE columns round-trip as
// time.Time, connects and pings.
func NewRepository(ctx context.Context, dsn, table string) (*Repository, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	c.ParseTime = true
	db, err := sqlOpen("mysql", c.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
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
		return nil, fmt.Errorf("mysql: begin tx: %w", err)
	}
	return &loadTx{tx: tx, table: r.table}, nil
}

type loadTx struct {
	tx    *sql.Tx
	table string
}

// Reset deletes all rows of the table. DELETE, unlike TRUNCATE, stays inside
// the transaction.
func (t *loadTx) Reset(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, "DELETE FROM "+Dialect.QuoteFQN(t.table))
	return err
}

// CopyFrom writes one batch with multi-row INSERT statements.
func (t *loadTx) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	per := maxPlaceholders / len(columns)
	if per < 1 {
		per = 1
	}
	var total int64
	for lo := 0; lo < len(rows); lo += per {
		hi := min(lo+per, len(rows))
		q, args, err := insertSQL(t.table, columns, rows[lo:hi])
		if err != nil {
			return total, err
		}
		res, err := t.tx.ExecContext(ctx, q, args...)
		if err != nil {
			return total, fmt.Errorf("mysql: insert: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func (t *loadTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *loadTx) Rollback(context.Context) error { return t.tx.Rollback() }

// Close closes the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

// insertSQL builds INSERT INTO t (cols) VALUES (?,..),(?,..) and its flattened
// arguments.
func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", Dialect.QuoteFQN(table), strings.Join(quoted, ","))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(tuple)
		args = append(args, row...)
	}
	return b.String(), args, nil
}

// quoteIdent backquotes one identifier segment, doubling embedded backquotes.
func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
