// Package sourcetest seeds a small retail store into a SQLite database for
// tests of the extraction and pipeline code.
//
// Fixture contents:
//
//	customers    C1 Alice, C2 Bob, C3 Carol (no orders)
//	products     P1 Widget (cost 50), P2 Chair (cost 20)
//	orders       O1 C1 2024-01-10, O2 C1 2024-03-05 (returned), O3 C2 2024-12-01
//	order_items  O1: 2xP1 @100 -10%, 1xP2 @40; O2: 3xP2 @40 -25%; O3: 1xP1 @100
package sourcetest

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the DDL for the five source tables.
var Schema = []string{
	`CREATE TABLE customers (
		customer_id   TEXT PRIMARY KEY,
		customer_name TEXT,
		gender        TEXT,
		age           INTEGER,
		city          TEXT,
		state         TEXT,
		segment       TEXT
	)`,
	`CREATE TABLE products (
		product_id   TEXT PRIMARY KEY,
		product_name TEXT,
		category     TEXT,
		sub_category TEXT,
		brand        TEXT,
		cost_price   REAL
	)`,
	`CREATE TABLE orders (
		order_id    TEXT PRIMARY KEY,
		customer_id TEXT,
		order_date  TEXT,
		ship_date   TEXT,
		ship_mode   TEXT,
		region      TEXT
	)`,
	`CREATE TABLE order_items (
		order_id   TEXT,
		product_id TEXT,
		quantity   INTEGER,
		unit_price REAL,
		discount   REAL
	)`,
	`CREATE TABLE returns (order_id TEXT)`,
}

// Rows is the fixture data, one INSERT per element.
var Rows = []string{
	`INSERT INTO customers VALUES
		('C1', 'Alice', 'female', 30, 'Mumbai', 'Maharashtra', 'consumer'),
		('C2', 'Bob',   'male',   45, 'Pune',   'Maharashtra', 'corporate'),
		('C3', 'Carol', 'female', 52, 'Delhi',  'Delhi',       'home office')`,
	`INSERT INTO products VALUES
		('P1', 'Widget', 'technology', 'phones', 'Acme',  50),
		('P2', 'Chair',  'furniture',  'chairs', 'Sitwell', 20)`,
	`INSERT INTO orders VALUES
		('O1', 'C1', '2024-01-10', '2024-01-14', 'standard class', 'west'),
		('O2', 'C1', '2024-03-05', '2024-03-07', 'first class',    'west'),
		('O3', 'C2', '2024-12-01', '2024-12-03', 'same day',       'north')`,
	`INSERT INTO order_items VALUES
		('O1', 'P1', 2, 100, 0.10),
		('O1', 'P2', 1, 40,  0),
		('O2', 'P2', 3, 40,  0.25),
		('O3', 'P1', 1, 100, 0)`,
	`INSERT INTO returns VALUES ('O2')`,
}

// Seed creates the schema and loads the fixture rows.
func Seed(ctx context.Context, db *sql.DB) error {
	for _, stmt := range append(append([]string{}, Schema...), Rows...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}
