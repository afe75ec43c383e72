// Package storage publishes cleaned tables to a warehouse database behind a
// backend-agnostic Repository.
//
// Backends (postgres, mssql, sqlite, mysql) register a Factory and a DDL
// builder at init time; import internal/storage/all to enable all of them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects a backend and the table a Repository writes to.
type Config struct {
	Kind string
	DSN  string
	// Table may be schema-qualified ("bi.sales_fact").
	Table string
}

// Repository writes rows into one table.
type Repository interface {
	// Exec runs a statement, typically DDL, outside any load transaction.
	Exec(ctx context.Context, sql string) error
	// Begin starts a transaction that replaces the table contents.
	Begin(ctx context.Context) (Tx, error)
	Close()
}

// Tx is one replace of a table's contents. Nothing is visible to readers
// until Commit; Rollback restores the previous contents.
type Tx interface {
	// Reset deletes every row of the table.
	Reset(ctx context.Context) error
	// CopyFrom bulk-inserts rows aligned to columns and returns the number of
	// rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind, replacing any previous one.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}
