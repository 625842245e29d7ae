// Package api serves the catalog, comparison and preference operations over
// HTTP as JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/engine/prefs"
	"github.com/WessleyAI/car-explorer/pkg/metrics"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Catalog      *catalog.Holder
	KV           prefs.KV
	PrefsOptions []prefs.Option
	Metrics      *metrics.Registry
	Logger       *slog.Logger
}

// Server holds the handlers. Create it with New and mount Handler.
type Server struct {
	catalog *catalog.Holder
	kv      prefs.KV
	opts    []prefs.Option
	log     *slog.Logger
	queries *prometheus.CounterVec
	mux     *http.ServeMux
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.KV == nil {
		d.KV = prefs.NewMemoryKV()
	}
	if d.Catalog == nil {
		d.Catalog = catalog.NewHolder(nil)
	}
	s := &Server{
		catalog: d.Catalog,
		kv:      d.KV,
		opts:    append([]prefs.Option{prefs.WithLogger(d.Logger), prefs.WithMetrics(d.Metrics)}, d.PrefsOptions...),
		log:     d.Logger,
		queries: d.Metrics.Counter("carexplorer_queries_total", "Catalog and comparison queries served.", "endpoint"),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	m := s.mux
	m.HandleFunc("GET /api/health", s.handleHealth)

	m.HandleFunc("GET /api/cars", s.handleCars)
	m.HandleFunc("GET /api/cars/{id}", s.handleCar)
	m.HandleFunc("GET /api/categories", s.handleCategories)
	m.HandleFunc("GET /api/stats", s.handleStats)
	m.HandleFunc("GET /api/compare", s.handleCompare)

	m.HandleFunc("GET /api/favorites", s.withSession(s.listFavorites))
	m.HandleFunc("DELETE /api/favorites", s.withSession(s.clearFavorites))
	m.HandleFunc("GET /api/favorites/export", s.withSession(s.exportFavorites))
	m.HandleFunc("POST /api/favorites/import", s.withSession(s.importFavorites))
	m.HandleFunc("PUT /api/favorites/{id}", s.withSession(s.addFavorite))
	m.HandleFunc("DELETE /api/favorites/{id}", s.withSession(s.removeFavorite))
	m.HandleFunc("POST /api/favorites/{id}/toggle", s.withSession(s.toggleFavorite))

	m.HandleFunc("GET /api/comparison", s.withSession(s.listComparison))
	m.HandleFunc("DELETE /api/comparison", s.withSession(s.clearComparison))
	m.HandleFunc("PUT /api/comparison/{id}", s.withSession(s.addToComparison))
	m.HandleFunc("DELETE /api/comparison/{id}", s.withSession(s.removeFromComparison))
	m.HandleFunc("POST /api/comparison/{id}/toggle", s.withSession(s.toggleComparison))

	m.HandleFunc("GET /api/theme", s.withSession(s.getTheme))
	m.HandleFunc("PUT /api/theme", s.withSession(s.setTheme))
}

// Handler returns the routed handler without middleware.
func (s *Server) Handler() http.Handler { return s.mux }

// Mount registers h on the server's mux, for endpoints such as /metrics that
// live next to the API.
func (s *Server) Mount(pattern string, h http.Handler) { s.mux.Handle(pattern, h) }

var (
	errStorage  = errors.New("preference storage unavailable")
	errNotFound = errors.New("car not found")
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, errors.New("invalid car id")
	}
	return id, nil
}

func (s *Server) storageError(w http.ResponseWriter, r *http.Request) {
	s.log.Warn("preference write failed", "method", r.Method, "path", r.URL.Path)
	writeError(w, http.StatusServiceUnavailable, errStorage)
}
