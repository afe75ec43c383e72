package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"retailetl/internal/metrics"
)

func readCounter(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func readGauge(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("Gauge.Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

func readSummary(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()
	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	return m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{"missing gateway URL returns error", "retail_etl", "", true, ""},
		{"empty job name uses default", "", "http://pushgateway:9091", false, "retail_etl"},
		{"explicit job name is preserved", "nightly", "http://pushgateway:9091", false, "nightly"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = %v, %v; want error", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("retail_etl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.StageTotal, 1, metrics.Labels{"stage": "extract", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 5, metrics.Labels{"table": "sales_fact", "kind": metrics.RowsDropped})
	b.IncCounter(metrics.RowsTotal, 2, metrics.Labels{"table": "sales_fact", "kind": metrics.RowsDropped})
	b.IncCounter(metrics.BatchesTotal, 3, metrics.Labels{"table": "rfm_segmentation"})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})

	if got := readCounter(t, b.stageCounter.WithLabelValues("extract", "success")); got != 1 {
		t.Fatalf("stage counter = %v, want 1", got)
	}
	if got := readCounter(t, b.rowCounter.WithLabelValues("sales_fact", metrics.RowsDropped)); got != 7 {
		t.Fatalf("row counter = %v, want 7", got)
	}
	if got := readCounter(t, b.batchCounter.WithLabelValues("rfm_segmentation")); got != 3 {
		t.Fatalf("batch counter = %v, want 3", got)
	}
}

func TestNilCollectorsAreNoops(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StageTotal, 1, metrics.Labels{"stage": "s", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"table": "t", "kind": "k"})
	b.IncCounter(metrics.BatchesTotal, 1, metrics.Labels{})
	b.ObserveHistogram(metrics.StageDuration, 1, metrics.Labels{})
	b.SetGauge(metrics.SummaryValue, 1, metrics.Labels{})
}

func TestObserveHistogramAndGauge(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("retail_etl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	lbls := metrics.Labels{"stage": "export", "status": "success"}
	b.ObserveHistogram(metrics.StageDuration, 1.5, lbls)
	b.ObserveHistogram("other_metric", 2.0, lbls)

	count, sum := readSummary(t, b.stageDuration, "export", "success")
	if count != 1 || sum != 1.5 {
		t.Fatalf("summary count=%d sum=%v; want 1 and 1.5", count, sum)
	}

	b.SetGauge(metrics.SummaryValue, 42.5, metrics.Labels{"figure": "revenue"})
	b.SetGauge(metrics.SummaryValue, 40, metrics.Labels{"figure": "revenue"})
	if got := readGauge(t, b.summary.WithLabelValues("revenue")); got != 40 {
		t.Fatalf("gauge = %v, want last value 40", got)
	}
}

func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequest struct {
		method string
		path   string
		body   string
	}
	reqCh := make(chan pushRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequest{method: r.Method, path: r.URL.Path, body: string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("nightly", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.StageTotal, 1, metrics.Labels{"stage": "extract", "status": "success"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushRequest
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush() did not send a request to the Pushgateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", got.method)
	}
	if !strings.Contains(got.path, "/job/nightly") {
		t.Fatalf("path = %s, want job grouping key", got.path)
	}
	if got.body == "" {
		t.Fatalf("push body is empty")
	}
}
