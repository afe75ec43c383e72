package storage

import (
	"context"
	"fmt"
	"sync"

	"retailetl/internal/ddl"
)

// DDLBuilder renders an idempotent CREATE TABLE statement in a backend's
// dialect.
type DDLBuilder func(def ddl.TableDef) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL registers (or replaces) the DDLBuilder for kind. Backends call
// it from init.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable renders def with the builder registered for kind and applies it
// through repo.
func EnsureTable(ctx context.Context, kind string, repo Repository, def ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL builder registered for kind %q", kind)
	}
	stmt, err := fn(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}
