package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/AlgoDeveloper400/MQL5-Economic-News-Data-Pipeline-2025/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend("job", ""); err == nil {
		t.Fatalf("NewBackend with empty URL: error = nil, want non-nil")
	}

	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.jobName != "calmerge" {
		t.Fatalf("default jobName = %q, want calmerge", b.jobName)
	}

	b, err = NewBackend("merge-run-7", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.jobName != "merge-run-7" || b.gatewayURL != "http://pushgateway:9091" {
		t.Fatalf("backend = %q %q", b.jobName, b.gatewayURL)
	}

	// Label cardinality sanity: these calls should not panic.
	b.stepCounter.WithLabelValues("load_base", "success").Add(1)
	b.stepDuration.WithLabelValues("dedup", "failure").Observe(0.5)
	b.recordCounter.WithLabelValues("loaded").Add(1)
	b.batchCounter.Add(1)
}

func TestIncCounterRouting(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("calmerge", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter("merge_step_total", 3, metrics.Labels{"step": "boundary", "status": "success"})
	b.IncCounter("merge_records_total", 5, metrics.Labels{"kind": "written"})
	b.IncCounter("merge_batches_total", 2, metrics.Labels{})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})

	if got := readCounterValue(t, b.stepCounter.WithLabelValues("boundary", "success")); got != 3 {
		t.Fatalf("stepCounter = %v, want 3", got)
	}
	if got := readCounterValue(t, b.recordCounter.WithLabelValues("written")); got != 5 {
		t.Fatalf("recordCounter = %v, want 5", got)
	}
	if got := readCounterValue(t, b.batchCounter); got != 2 {
		t.Fatalf("batchCounter = %v, want 2", got)
	}
}

// IncCounter and ObserveHistogram must be safe no-ops on a zero-value
// backend with nil collectors.
func TestNilCollectorsDoNotPanic(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("merge_step_total", 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter("merge_records_total", 1, metrics.Labels{"kind": "loaded"})
	b.IncCounter("merge_batches_total", 1, metrics.Labels{})
	b.ObserveHistogram("merge_step_duration_seconds", 1, metrics.Labels{"step": "s", "status": "success"})
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("calmerge", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.ObserveHistogram("merge_step_duration_seconds", 1.5, metrics.Labels{"step": "repair", "status": "success"})
	b.ObserveHistogram("other_metric", 9, metrics.Labels{"step": "repair", "status": "success"})

	m := &dto.Metric{}
	metric, ok := b.stepDuration.WithLabelValues("repair", "success").(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	sum := m.GetSummary()
	if sum.GetSampleCount() != 1 || sum.GetSampleSum() != 1.5 {
		t.Fatalf("summary = count %d sum %v, want 1 and 1.5", sum.GetSampleCount(), sum.GetSampleSum())
	}
}

// Flush must push the registry to the configured Pushgateway URL.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushInfo struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushInfo{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("merge-run", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter("merge_step_total", 1, metrics.Labels{"step": "load_base", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	select {
	case got := <-reqCh:
		if got.method == "" || got.path == "" || got.bodyLen == 0 {
			t.Fatalf("push request = %#v", got)
		}
	default:
		t.Fatalf("Flush() did not result in any HTTP request to the Pushgateway")
	}
}
