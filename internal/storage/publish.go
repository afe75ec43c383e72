package storage

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"retailetl/internal/config"
	"retailetl/internal/ddl"
	"retailetl/internal/metrics"
	"retailetl/pkg/records"
)

// Published reports the outcome for one table.
type Published struct {
	Table   string
	Target  string
	Rows    int64
	Batches int64
}

// Publish replaces the contents of one warehouse table per cleaned table:
// optionally create it, then delete existing rows and load in batches inside
// one transaction. A failed batch rolls the table back to its previous
// contents. Tables are published one after another; the first error aborts,
// leaving tables published before it committed.
func Publish(ctx context.Context, job string, cfg config.Warehouse, tables []*records.Table) ([]Published, error) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	out := make([]Published, 0, len(tables))
	for _, t := range tables {
		p, err := publishTable(ctx, job, cfg, t, batchSize)
		if err != nil {
			return out, fmt.Errorf("publish %s: %w", t.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func publishTable(ctx context.Context, job string, cfg config.Warehouse, t *records.Table, batchSize int) (Published, error) {
	target := cfg.TablePrefix + t.Name
	p := Published{Table: t.Name, Target: target}

	repo, err := New(ctx, Config{Kind: cfg.Kind, DSN: cfg.DSN, Table: target})
	if err != nil {
		return p, err
	}
	defer repo.Close()

	def := ddl.Infer(target, t)
	if cfg.AutoCreateTable {
		if err := EnsureTable(ctx, cfg.Kind, repo, def); err != nil {
			return p, fmt.Errorf("create table: %w", err)
		}
	}
	tx, err := repo.Begin(ctx)
	if err != nil {
		return p, fmt.Errorf("begin: %w", err)
	}
	if err := tx.Reset(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return p, fmt.Errorf("reset: %w", err)
	}

	start := time.Now()
	p.Rows, p.Batches, err = LoadBatches(ctx, t.Columns, Values(t, def), batchSize, tx.CopyFrom)
	if err != nil {
		if rerr := tx.Rollback(ctx); rerr != nil {
			log.Printf("publish: %s rollback failed: %v", target, rerr)
		}
		return p, err
	}
	if err := tx.Commit(ctx); err != nil {
		return p, fmt.Errorf("commit: %w", err)
	}
	metrics.RecordBatches(job, t.Name, p.Batches)
	metrics.RecordRows(job, t.Name, metrics.RowsPublished, p.Rows)
	log.Printf("publish: %s -> %s rows=%d batches=%d in %s",
		t.Name, target, p.Rows, p.Batches, time.Since(start).Truncate(time.Millisecond))
	return p, nil
}

// Values returns t's rows aligned to its columns with values narrowed to the
// types every backend driver accepts: nil, int64, float64, string, bool and
// time.Time. Columns def marks as KindFloat are loaded as float64 so they
// match the inferred column type.
func Values(t *records.Table, def ddl.TableDef) [][]any {
	float := make([]bool, len(t.Columns))
	for i, c := range def.Columns {
		if i < len(float) && c.Kind == ddl.KindFloat {
			float[i] = true
		}
	}
	rows := t.Rows()
	for _, row := range rows {
		for i, v := range row {
			if float[i] {
				if f, ok := records.ToFloat(v); ok {
					row[i] = f
				} else {
					row[i] = nil
				}
				continue
			}
			row[i] = driverValue(v)
		}
	}
	return rows
}

func driverValue(v any) any {
	switch x := v.(type) {
	case nil, int64, string, bool, time.Time:
		return x
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	}
	return records.Format(v)
}
