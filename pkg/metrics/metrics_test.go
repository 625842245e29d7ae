package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounterIsCachedByName(t *testing.T) {
	r := New()
	a := r.Counter("carexplorer_test_total", "test counter", "op")
	b := r.Counter("carexplorer_test_total", "test counter", "op")
	if a != b {
		t.Fatal("expected the same vec for the same name")
	}

	a.WithLabelValues("add").Inc()
	b.WithLabelValues("add").Add(2)
	if got := testutil.ToFloat64(a.WithLabelValues("add")); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("carexplorer_catalog_cars", "cars loaded")
	g.WithLabelValues().Set(42)
	if got := testutil.ToFloat64(g.WithLabelValues()); got != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestHistogramSince(t *testing.T) {
	r := New()
	h := r.Histogram("carexplorer_load_seconds", "load latency", nil, "source")
	Since(h.WithLabelValues("file"), time.Now().Add(-time.Millisecond))

	n, err := testutil.GatherAndCount(r.Gatherer(), "carexplorer_load_seconds")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 series, got %d", n)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.Counter("carexplorer_requests_total", "requests", "method", "code").WithLabelValues("GET", "200").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{`carexplorer_requests_total{code="200",method="GET"} 1`, "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %s", want)
		}
	}
}
