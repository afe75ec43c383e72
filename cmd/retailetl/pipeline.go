package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"retailetl/internal/clean"
	"retailetl/internal/config"
	"retailetl/internal/export"
	"retailetl/internal/metrics"
	"retailetl/internal/source"
	"retailetl/internal/storage"
	"retailetl/internal/summary"
	"retailetl/pkg/records"
)

// Stage names, as reported to metrics and in errors.
const (
	stageExtract = "extract"
	stageClean   = "clean"
	stageExport  = "export"
	stagePublish = "publish"
	stageSummary = "summary"
)

// Test seams.
var (
	openSource = source.Open
	extract    = source.Extract
	now        = time.Now
)

// runResult is what one run produced.
type runResult struct {
	Reports   []clean.Report
	Files     []export.File
	Published []storage.Published
	Summary   summary.Summary
}

// run executes the pipeline once: extract, clean, export, optionally publish,
// then write the summary to out. Stages run in order and the first error
// aborts the run.
func run(ctx context.Context, p config.Pipeline, out io.Writer) (runResult, error) {
	var (
		res     runResult
		raw     source.Tables
		cleaned source.Tables
	)

	err := stage(p.Job, stageExtract, func() error {
		db, dialect, err := openSource(ctx, p.Source)
		if err != nil {
			return err
		}
		// The connection is only needed for the four queries.
		defer db.Close()
		raw, err = extract(ctx, db, dialect, p.RFM.ReferenceDate)
		return err
	})
	if err != nil {
		return res, err
	}
	for _, name := range source.TableOrder {
		metrics.RecordRows(p.Job, name, metrics.RowsExtracted, int64(raw[name].Len()))
	}

	err = stage(p.Job, stageClean, func() error {
		var err error
		cleaned, res.Reports, err = clean.All(raw)
		return err
	})
	if err != nil {
		return res, err
	}
	for _, rep := range res.Reports {
		metrics.RecordRows(p.Job, rep.Table, metrics.RowsDropped, int64(rep.Dropped()))
	}

	err = stage(p.Job, stageExport, func() error {
		var err error
		if res.Files, err = export.Write(p.Output.Dir, cleaned, now()); err != nil {
			return err
		}
		if p.Output.Verify {
			return export.Verify(res.Files, cleaned)
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	for _, f := range res.Files {
		metrics.RecordRows(p.Job, f.Table, metrics.RowsExported, int64(f.Rows))
	}
	log.Printf("export: %d files saved to %s", len(res.Files), p.Output.Dir)

	if p.Warehouse.Kind != "" {
		err = stage(p.Job, stagePublish, func() error {
			var err error
			res.Published, err = storage.Publish(ctx, p.Job, p.Warehouse, ordered(cleaned))
			return err
		})
		if err != nil {
			return res, err
		}
	}

	err = stage(p.Job, stageSummary, func() error {
		res.Summary = summary.Compute(cleaned[source.SalesFact], cleaned[source.CustomerCLV])
		return res.Summary.Write(out, p.Summary.Currency)
	})
	if err != nil {
		return res, err
	}
	recordSummary(p.Job, res.Summary)
	return res, nil
}

// stage times fn, records the outcome and prefixes any error with the stage
// name.
func stage(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStage(job, name, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func ordered(tables source.Tables) []*records.Table {
	out := make([]*records.Table, 0, len(source.TableOrder))
	for _, name := range source.TableOrder {
		if t, ok := tables[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

func recordSummary(job string, s summary.Summary) {
	metrics.RecordSummary(job, "orders", float64(s.Orders))
	metrics.RecordSummary(job, "customers", float64(s.Customers))
	metrics.RecordSummary(job, "revenue", s.Revenue)
	metrics.RecordSummary(job, "profit", s.Profit)
	metrics.RecordSummary(job, "mean_margin_pct", s.MeanMarginPct)
	metrics.RecordSummary(job, "top_clv", s.TopCLV)
	metrics.RecordSummary(job, "return_rate_pct", s.ReturnRatePct)
}
