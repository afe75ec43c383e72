// Package ddl defines a small, backend-agnostic model for SQL DDL, infers it
// from a cleaned table and renders CREATE TABLE statements per dialect.
//
// Backends describe their dialect (identifier quoting, type names and how to
// make the statement idempotent) and register a builder with
// storage.RegisterDDL.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures what differs between backends when rendering DDL.
type Dialect struct {
	// Quote quotes one identifier segment.
	Quote func(string) string
	// Types maps logical kinds to SQL types.
	Types map[Kind]string
	// IfNotExists wraps a CREATE TABLE statement so it is a no-op when the
	// table already exists. The quoted table name is passed along.
	IfNotExists func(quotedTable, create string) string
}

// QuoteFQN quotes each dot-separated segment of name, skipping empty ones.
func (d Dialect) QuoteFQN(name string) string {
	var parts []string
	for _, p := range strings.Split(name, ".") {
		if p != "" {
			parts = append(parts, d.Quote(p))
		}
	}
	return strings.Join(parts, ".")
}

// BuildCreateTableSQL renders t for dialect d.
//
// Rules:
//   - t.FQN must be non-empty.
//   - Each column must have a non-empty Name and a Kind the dialect maps.
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := d.Types[c.Kind]
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s: no SQL type for kind %s", name, c.Kind)
		}
		cols = append(cols, d.Quote(name)+" "+typ)
	}

	table := d.QuoteFQN(fqn)
	stmt := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", table, strings.Join(cols, ",\n  "))
	if d.IfNotExists != nil {
		stmt = d.IfNotExists(table, stmt)
	}
	return stmt, nil
}

// DoubleQuote is the ANSI identifier quote used by Postgres and SQLite.
func DoubleQuote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// CreateIfNotExists inserts IF NOT EXISTS after CREATE TABLE.
func CreateIfNotExists(_ string, create string) string {
	return strings.Replace(create, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
}
