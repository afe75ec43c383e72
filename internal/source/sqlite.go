package source

import (
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"retailetl/internal/config"
)

func init() {
	Register("sqlite", Driver{Name: "sqlite", DSN: sqliteDSN, Dialect: SQLite})
}

// sqliteDSN falls back to Database as a file path when no DSN is given.
func sqliteDSN(s config.Source) (string, error) {
	if s.Database == "" {
		return "", fmt.Errorf("dsn or database path is required")
	}
	return s.Database, nil
}
