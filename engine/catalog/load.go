package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/WessleyAI/car-explorer/pkg/fn"
	"github.com/WessleyAI/car-explorer/pkg/metrics"
	"github.com/WessleyAI/car-explorer/pkg/resilience"
)

// Load reads src and returns a validated snapshot. Each step runs in its own
// span.
func Load(ctx context.Context, src Source) (*Store, error) {
	fetch := fn.TracedStage("catalog.fetch", fn.PairStage(func(ctx context.Context, s Source) ([]Car, error) {
		return s.Cars(ctx)
	}))
	validate := fn.TracedStage("catalog.validate", fn.PairStage(func(_ context.Context, cars []Car) ([]Car, error) {
		if err := Validate(cars); err != nil {
			return nil, fmt.Errorf("catalog: load %s: %w", src.Name(), err)
		}
		return cars, nil
	}))
	build := fn.TracedStage("catalog.build", fn.MapStage(func(cars []Car) *Store {
		return newStore(src.Name(), cars)
	}))
	return fn.Then(fn.Then(fetch, validate), build)(ctx, src).Unwrap()
}

func newStore(source string, cars []Car) *Store {
	s := &Store{
		cars:     slices.Clone(cars),
		index:    make(map[int]int, len(cars)),
		source:   source,
		loadedAt: time.Now(),
	}
	if s.cars == nil {
		s.cars = []Car{}
	}
	for i, c := range s.cars {
		s.index[c.ID] = i
	}
	return s
}

// Reloader refreshes a Holder from its Source. A failed reload leaves the
// published snapshot in place.
type Reloader struct {
	holder *Holder
	src    Source
	log    *slog.Logger
	limit  *resilience.Limiter

	loads   *prometheus.CounterVec
	cars    prometheus.Gauge
	latency prometheus.Observer

	mu sync.Mutex
}

type ReloaderOption func(*Reloader)

// WithReloadLimit drops reload requests that arrive faster than l allows.
func WithReloadLimit(l *resilience.Limiter) ReloaderOption {
	return func(r *Reloader) { r.limit = l }
}

// WithReloadMetrics records load outcomes, latency and catalog size in reg.
func WithReloadMetrics(reg *metrics.Registry) ReloaderOption {
	return func(r *Reloader) {
		r.loads = reg.Counter("carexplorer_catalog_loads_total", "Catalog load attempts by outcome.", "outcome")
		r.cars = reg.Gauge("carexplorer_catalog_cars", "Cars in the published catalog snapshot.").WithLabelValues()
		r.latency = reg.Histogram("carexplorer_catalog_load_seconds", "Catalog load latency.", nil).WithLabelValues()
	}
}

func NewReloader(h *Holder, src Source, log *slog.Logger, opts ...ReloaderOption) *Reloader {
	r := &Reloader{holder: h, src: src, log: log}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reload loads a fresh snapshot and publishes it.
func (r *Reloader) Reload(ctx context.Context) error {
	if r.limit != nil && !r.limit.Allow() {
		r.observe("throttled")
		return resilience.ErrRateLimited
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	s, err := Load(ctx, r.src)
	if r.latency != nil {
		metrics.Since(r.latency, start)
	}
	if err != nil {
		r.observe("error")
		r.log.Error("catalog reload failed", "source", r.src.Name(), "err", err)
		return err
	}
	r.holder.Swap(s)
	r.observe("ok")
	if r.cars != nil {
		r.cars.Set(float64(s.Len()))
	}
	r.log.Info("catalog loaded", "source", s.Source(), "cars", s.Len())
	return nil
}

func (r *Reloader) observe(outcome string) {
	if r.loads != nil {
		r.loads.WithLabelValues(outcome).Inc()
	}
}
