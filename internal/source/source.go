// Package source connects to the relational store and runs the four fixed
// aggregation queries that seed the pipeline.
//
// Each supported store kind registers a Driver at init time (see mysql.go,
// postgres.go, sqlite.go). A Driver knows the database/sql driver name, how to
// build a DSN from config.Source, and which SQL dialect the queries are
// written in. Callers stay driver-agnostic:
//
//	db, dialect, err := source.Open(ctx, cfg.Source)
//	if err != nil { ... }
//	tables, err := source.Extract(ctx, db, dialect, cfg.RFM.ReferenceDate)
//	db.Close()
//
// Extraction is read-only, strictly sequential, and has no retry policy: the
// first connection or query error is returned to the caller.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"sync"

	"retailetl/internal/config"
	"retailetl/pkg/records"
)

// Table names, in extraction order.
const (
	SalesFact          = "sales_fact"
	CustomerCLV        = "customer_clv"
	RFMSegmentation    = "rfm_segmentation"
	ProductPerformance = "product_performance"
)

// TableOrder is the fixed order tables are extracted, cleaned and exported in.
var TableOrder = []string{SalesFact, CustomerCLV, RFMSegmentation, ProductPerformance}

// Tables holds one table per name.
type Tables map[string]*records.Table

// Driver describes how to reach one kind of source store.
type Driver struct {
	// Name is the database/sql driver name passed to sql.Open.
	Name string
	// DSN builds the connection string from the discrete config fields. It is
	// not called when config.Source.DSN is set.
	DSN func(config.Source) (string, error)
	// Dialect holds the query texts for this store.
	Dialect Dialect
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{}
)

// Register makes a Driver available under kind. It is typically called from
// init functions.
func Register(kind string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[kind] = d
}

// Kinds returns the registered kinds, sorted.
func Kinds() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	out := make([]string, 0, len(drivers))
	for k := range drivers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookup(kind string) (Driver, error) {
	driversMu.RLock()
	d, ok := drivers[kind]
	driversMu.RUnlock()
	if !ok {
		return Driver{}, fmt.Errorf("source: no driver registered for kind %q", kind)
	}
	return d, nil
}

// sqlOpen is a test seam.
var sqlOpen = sql.Open

// Open connects to the configured store and verifies the connection with a
// ping. The returned *sql.DB is limited to a single connection: all four
// queries share it and nothing runs concurrently.
func Open(ctx context.Context, cfg config.Source) (*sql.DB, Dialect, error) {
	d, err := lookup(cfg.Kind)
	if err != nil {
		return nil, Dialect{}, err
	}
	dsn := cfg.DSN
	if dsn == "" {
		if dsn, err = d.DSN(cfg); err != nil {
			return nil, Dialect{}, fmt.Errorf("source: %s dsn: %w", cfg.Kind, err)
		}
	}
	db, err := sqlOpen(d.Name, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("source: open %s: %w", cfg.Kind, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("source: connect %s: %w", cfg.Kind, err)
	}
	return db, d.Dialect, nil
}

// Querier is the subset of *sql.DB used by Extract.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Extract runs the four aggregation queries in TableOrder and returns their
// results keyed by table name. referenceDate (YYYY-MM-DD) is bound into the
// RFM query as the fixed date recency is measured against.
func Extract(ctx context.Context, db Querier, dialect Dialect, referenceDate string) (Tables, error) {
	out := make(Tables, len(TableOrder))
	for _, name := range TableOrder {
		q, args := dialect.query(name, referenceDate)
		if q == "" {
			return nil, fmt.Errorf("source: dialect %s has no query for %s", dialect.Name, name)
		}
		t, err := queryTable(ctx, db, name, q, args...)
		if err != nil {
			return nil, fmt.Errorf("source: extract %s: %w", name, err)
		}
		log.Printf("extract: %s rows=%d cols=%d", name, t.Len(), len(t.Columns))
		out[name] = t
	}
	return out, nil
}

func queryTable(ctx context.Context, db Querier, name, q string, args ...any) (*records.Table, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTable(name, rows)
}
