package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/engine/compare"
	"github.com/WessleyAI/car-explorer/engine/prefs"
	"github.com/WessleyAI/car-explorer/engine/query"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "cars": s.catalog.Current().Len()})
}

func (s *Server) handleCars(w http.ResponseWriter, r *http.Request) {
	c, err := query.DecodeCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.queries.WithLabelValues("cars").Inc()
	writeJSON(w, http.StatusOK, query.Apply(s.catalog.Current().All(), c, query.DecodeSort(r.URL.Query())))
}

func (s *Server) handleCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	car, err := s.catalog.Current().Get(id)
	if errors.Is(err, catalog.ErrCarNotFound) {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, query.Categories(s.catalog.Current().All()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	field := catalog.FieldPrice
	if raw := r.URL.Query().Get("field"); raw != "" {
		f, ok := catalog.ParseField(raw)
		if !ok || !f.Numeric() {
			writeError(w, http.StatusBadRequest, fmt.Errorf("field %q has no statistics", raw))
			return
		}
		field = f
	}
	c, err := query.DecodeCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.queries.WithLabelValues("stats").Inc()
	writeJSON(w, http.StatusOK, query.StatsFor(query.Filter(s.catalog.Current().All(), c), field))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var ids []int
	if raw := strings.TrimSpace(r.URL.Query().Get("ids")); raw != "" {
		parsed, err := parseIDs(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		ids = parsed
	} else {
		ids = prefs.New(s.kv, s.session(w, r), s.opts...).Comparison(r.Context())
	}
	s.queries.WithLabelValues("compare").Inc()

	writeJSON(w, http.StatusOK, compare.NewReport(s.catalog.Current().Resolve(ids)))
}

func parseIDs(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid car id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
