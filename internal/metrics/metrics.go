// Package metrics records operational metrics for a pipeline run behind a
// small backend-agnostic interface.
//
// A process-wide backend defaults to a no-op, so instrumentation is always
// safe to call. cmd/retailetl installs a Pushgateway or DogStatsD backend
// from its flags; the backends live in subpackages so the rest of the code
// never imports a metrics client directly.
package metrics

import (
	"math"
	"time"
)

// Metric names.
const (
	StageTotal    = "retail_etl_stage_total"
	StageDuration = "retail_etl_stage_duration_seconds"
	RowsTotal     = "retail_etl_rows_total"
	BatchesTotal  = "retail_etl_batches_total"
	SummaryValue  = "retail_etl_summary"
)

// Row kinds passed to RecordRows.
const (
	RowsExtracted = "extracted"
	RowsDropped   = "dropped"
	RowsExported  = "exported"
	RowsPublished = "published"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge records the current value of a gauge.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage counts one execution of a pipeline stage and observes its
// duration, labelled success or failure.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "stage": stage, "status": status}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows adds n rows of the given kind for table. Non-positive n is
// ignored.
func RecordRows(job, table, kind string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{"job": job, "table": table, "kind": kind})
}

// RecordBatches adds n warehouse load batches for table.
func RecordBatches(job, table string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(n), Labels{"job": job, "table": table})
}

// RecordSummary publishes one figure of the run summary (revenue, return
// rate, ...) as a gauge. NaN figures are skipped.
func RecordSummary(job, figure string, v float64) {
	if math.IsNaN(v) {
		return
	}
	backend.SetGauge(SummaryValue, v, Labels{"job": job, "figure": figure})
}
