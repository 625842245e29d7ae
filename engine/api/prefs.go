package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/engine/prefs"
	"github.com/WessleyAI/car-explorer/pkg/fn"
)

var errComparisonFull = errors.New("comparison is full")

// carID parses {id} and checks the car exists, writing the error response
// when it does not.
func (s *Server) carID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	if _, ok := s.catalog.Current().ByID(id); !ok {
		writeError(w, http.StatusNotFound, errNotFound)
		return 0, false
	}
	return id, true
}

// idsResponse lists a preference set both as IDs and as resolved cars.
type idsResponse struct {
	IDs  []int         `json:"ids"`
	Cars []catalog.Car `json:"cars"`
}

func (s *Server) idsBody(ids []int) idsResponse {
	return idsResponse{IDs: ids, Cars: s.catalog.Current().Resolve(ids)}
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	writeJSON(w, http.StatusOK, s.idsBody(p.Favorites(r.Context())))
}

func (s *Server) clearFavorites(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	if !p.ClearFavorites(r.Context()) {
		s.storageError(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	id, ok := s.carID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if !p.AddFavorite(ctx, id) && !p.IsFavorite(ctx, id) {
		s.storageError(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.idsBody(p.Favorites(ctx)))
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	if !p.RemoveFavorite(ctx, id) && p.IsFavorite(ctx, id) {
		s.storageError(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.idsBody(p.Favorites(ctx)))
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	id, ok := s.carID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": p.ToggleFavorite(r.Context(), id)})
}

func (s *Server) exportFavorites(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="favorites.json"`)
	io.WriteString(w, p.ExportFavorites(r.Context()))
}

func (s *Server) importFavorites(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, errors.New("body is not JSON"))
		return
	}
	ctx := r.Context()
	if !p.ImportFavorites(ctx, string(body)) {
		writeError(w, http.StatusBadRequest, errors.New("body must be a JSON array of car ids"))
		return
	}
	writeJSON(w, http.StatusOK, s.idsBody(p.Favorites(ctx)))
}

// comparisonBody adds the capacity so clients can render free slots.
type comparisonBody struct {
	idsResponse
	Capacity int `json:"capacity"`
}

func (s *Server) comparisonBody(ids []int, p *prefs.Store) comparisonBody {
	return comparisonBody{idsResponse: s.idsBody(ids), Capacity: p.Capacity()}
}

func (s *Server) listComparison(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	writeJSON(w, http.StatusOK, s.comparisonBody(p.Comparison(r.Context()), p))
}

func (s *Server) clearComparison(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	if !p.ClearComparison(r.Context()) {
		s.storageError(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addToComparison(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	id, ok := s.carID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if !p.AddToComparison(ctx, id) {
		current := p.Comparison(ctx)
		switch {
		case fn.Contains(current, id):
		case len(current) >= p.Capacity():
			writeError(w, http.StatusConflict, errComparisonFull)
			return
		default:
			s.storageError(w, r)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.comparisonBody(p.Comparison(ctx), p))
}

func (s *Server) removeFromComparison(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	if !p.RemoveFromComparison(ctx, id) && p.IsInComparison(ctx, id) {
		s.storageError(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.comparisonBody(p.Comparison(ctx), p))
}

func (s *Server) toggleComparison(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	id, ok := s.carID(w, r)
	if !ok {
		return
	}
	state := p.ToggleComparison(r.Context(), id)
	if state == prefs.ToggleFailed {
		s.storageError(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]prefs.ToggleResult{"state": state})
}

func (s *Server) getTheme(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	writeJSON(w, http.StatusOK, map[string]prefs.Theme{"theme": p.Theme(r.Context())})
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) setTheme(w http.ResponseWriter, r *http.Request, p *prefs.Store) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	t, err := prefs.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !p.SetTheme(r.Context(), t) {
		s.storageError(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]prefs.Theme{"theme": t})
}
