package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/car-explorer/engine/catalog"
	"github.com/WessleyAI/car-explorer/engine/catalog/catalogtest"
	"github.com/WessleyAI/car-explorer/engine/prefs"
	"github.com/WessleyAI/car-explorer/pkg/metrics"
)

var gamma = catalog.Car{
	ID: 3, Name: "gamma", Brand: "C", Category: "electric", Year: 2024,
	Price: 70000, Horsepower: 500, Acceleration: 3.0, TopSpeed: 160,
	FuelType: "Electric", Transmission: "Automatic",
}

var delta = catalog.Car{
	ID: 4, Name: "Delta", Brand: "D", Category: "suv", Year: 2021,
	Price: 30000, Horsepower: 200, Acceleration: 8.0, TopSpeed: 120,
	FuelType: "Hybrid", Transmission: "CVT",
}

type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newClient(t *testing.T, opts ...func(*Deps)) (*client, *metrics.Registry) {
	t.Helper()
	reg := metrics.New()
	d := Deps{
		Catalog: catalog.NewHolder(catalogtest.Store(catalogtest.Alpha, catalogtest.Beta, gamma, delta)),
		KV:      prefs.NewMemoryKV(),
		Metrics: reg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(&d)
	}
	return &client{t: t, h: New(d).Handler()}, reg
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	c, _ := newClient(t)
	rec := c.do("GET", "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","cars":4}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHealthBeforeFirstLoad(t *testing.T) {
	c, _ := newClient(t, func(d *Deps) { d.Catalog = nil })
	assert.JSONEq(t, `{"status":"ok","cars":0}`, c.do("GET", "/api/health", "").Body.String())
}

func TestCars(t *testing.T) {
	c, reg := newClient(t)

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"default sort is case-insensitive name", "", []int{1, 2, 4, 3}},
		{"category", "?category=suv", []int{2, 4}},
		{"all categories", "?category=all&sortBy=price&order=desc", []int{3, 1, 2, 4}},
		{"price bounds", "?minPrice=35000&maxPrice=60000", []int{1, 2}},
		{"horsepower floor", "?minHorsepower=400&sortBy=horsepower", []int{1, 3}},
		{"search matches brand", "?search=d", []int{4}},
		{"blank bound is unbounded", "?maxPrice=", []int{1, 2, 4, 3}},
		{"year sort", "?sortBy=year", []int{4, 2, 1, 3}},
		{"no match", "?search=zzz", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do("GET", "/api/cars"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			res := decode[struct {
				Cars  []catalog.Car `json:"cars"`
				Total int           `json:"total"`
			}](t, rec)
			assert.Equal(t, tt.want, catalog.IDs(res.Cars))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}

	queries := reg.Counter("carexplorer_queries_total", "", "endpoint")
	assert.Equal(t, float64(len(tests)), testutil.ToFloat64(queries.WithLabelValues("cars")))
}

func TestCarsInvalidCriteria(t *testing.T) {
	c, _ := newClient(t)
	rec := c.do("GET", "/api/cars?minPrice=cheap", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid criteria")
}

func TestCar(t *testing.T) {
	c, _ := newClient(t)

	rec := c.do("GET", "/api/cars/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalogtest.Beta, decode[catalog.Car](t, rec))

	assert.Equal(t, http.StatusNotFound, c.do("GET", "/api/cars/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/cars/abc", "").Code)
}

func TestCategories(t *testing.T) {
	c, _ := newClient(t)
	rec := c.do("GET", "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"electric", "sports", "suv"}, decode[[]string](t, rec))
}

func TestStats(t *testing.T) {
	c, _ := newClient(t)

	rec := c.do("GET", "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"min":30000,"max":70000,"avg":47500}`, rec.Body.String())

	rec = c.do("GET", "/api/stats?field=horsepower&category=suv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"min":200,"max":300,"avg":250}`, rec.Body.String())

	rec = c.do("GET", "/api/stats?search=nothing", "")
	assert.JSONEq(t, `{"min":0,"max":0,"avg":0}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/stats?field=name", "").Code)
	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/stats?field=weight", "").Code)
}

type compareBody struct {
	View *struct {
		Cars       []catalog.Car    `json:"cars"`
		Highlights map[string][]int `json:"highlights"`
	} `json:"view"`
	Ranking struct {
		Winner *struct {
			ID    int `json:"id"`
			Score int `json:"score"`
		} `json:"winner"`
	} `json:"ranking"`
	Summary string `json:"summary"`
	Tables  []struct {
		Title string `json:"title"`
	} `json:"tables"`
}

func TestCompareExplicitIDs(t *testing.T) {
	c, _ := newClient(t)
	rec := c.do("GET", "/api/compare?ids=1,2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[compareBody](t, rec)
	require.NotNil(t, body.View)
	assert.Equal(t, []int{1, 2}, catalog.IDs(body.View.Cars))
	assert.Equal(t, []int{2}, body.View.Highlights["price"])
	assert.Equal(t, []int{1}, body.View.Highlights["horsepower"])
	assert.Equal(t, []int{2}, body.View.Highlights["acceleration"])
	require.NotNil(t, body.Ranking.Winner)
	assert.Equal(t, 2, body.Ranking.Winner.ID)
	assert.Equal(t, 2, body.Ranking.Winner.Score)
	assert.Contains(t, body.Summary, "Beta leads with 2 performance advantages")
	assert.Len(t, body.Tables, 3)
}

func TestCompareSkipsUnknownIDs(t *testing.T) {
	c, _ := newClient(t)
	body := decode[compareBody](t, c.do("GET", "/api/compare?ids=3,42", ""))
	require.NotNil(t, body.View)
	assert.Equal(t, []int{3}, catalog.IDs(body.View.Cars))
	assert.Equal(t, "Add more cars to compare", body.Summary)

	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/compare?ids=1,x", "").Code)
}

func TestCompareUsesSessionComparison(t *testing.T) {
	c, _ := newClient(t)

	body := decode[compareBody](t, c.do("GET", "/api/compare", ""))
	assert.Nil(t, body.View)
	assert.Nil(t, body.Ranking.Winner)
	assert.Empty(t, body.Tables)

	require.Equal(t, http.StatusOK, c.do("PUT", "/api/comparison/3", "").Code)
	require.Equal(t, http.StatusOK, c.do("PUT", "/api/comparison/4", "").Code)

	body = decode[compareBody](t, c.do("GET", "/api/compare", ""))
	require.NotNil(t, body.View)
	assert.Equal(t, []int{3, 4}, catalog.IDs(body.View.Cars))
}

func TestSessionCookieIssuedOnce(t *testing.T) {
	c, _ := newClient(t)
	rec := c.do("GET", "/api/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.HttpOnly)
	assert.Equal(t, "/", c.cookie.Path)
	assert.Len(t, c.cookie.Value, 36)

	rec = c.do("GET", "/api/favorites", "")
	assert.Empty(t, rec.Result().Cookies())

	c.cookie = &http.Cookie{Name: SessionCookie, Value: "not-a-uuid"}
	rec = c.do("GET", "/api/theme", "")
	assert.NotEmpty(t, rec.Result().Cookies())
	assert.NotEqual(t, "not-a-uuid", c.cookie.Value)
}

func TestSessionsAreIsolated(t *testing.T) {
	a, _ := newClient(t)
	shared := a.h
	b := &client{t: t, h: shared}

	require.Equal(t, http.StatusOK, a.do("PUT", "/api/favorites/1", "").Code)
	ids := decode[idsResponse](t, b.do("GET", "/api/favorites", "")).IDs
	assert.Empty(t, ids)
}

func TestFavoritesLifecycle(t *testing.T) {
	c, _ := newClient(t)

	rec := c.do("PUT", "/api/favorites/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2}, decode[idsResponse](t, rec).IDs)

	rec = c.do("PUT", "/api/favorites/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2}, decode[idsResponse](t, rec).IDs)

	assert.Equal(t, http.StatusNotFound, c.do("PUT", "/api/favorites/77", "").Code)

	rec = c.do("POST", "/api/favorites/1/toggle", "")
	assert.JSONEq(t, `{"favorite":true}`, rec.Body.String())
	rec = c.do("POST", "/api/favorites/2/toggle", "")
	assert.JSONEq(t, `{"favorite":false}`, rec.Body.String())

	list := decode[idsResponse](t, c.do("GET", "/api/favorites", ""))
	assert.Equal(t, []int{1}, list.IDs)
	assert.Equal(t, []int{1}, catalog.IDs(list.Cars))

	rec = c.do("DELETE", "/api/favorites/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[idsResponse](t, rec).IDs)

	c.do("PUT", "/api/favorites/3", "")
	assert.Equal(t, http.StatusNoContent, c.do("DELETE", "/api/favorites", "").Code)
	assert.Empty(t, decode[idsResponse](t, c.do("GET", "/api/favorites", "")).IDs)
}

func TestFavoritesExportImport(t *testing.T) {
	c, _ := newClient(t)

	rec := c.do("POST", "/api/favorites/import", "[3, 1, 3, 99]")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[idsResponse](t, rec)
	assert.Equal(t, []int{3, 1, 99}, body.IDs)
	assert.Equal(t, []int{3, 1}, catalog.IDs(body.Cars))

	rec = c.do("GET", "/api/favorites/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[\n  3,\n  1,\n  99\n]", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "favorites.json")

	for _, bad := range []string{"", "nope", `{"ids":[1]}`, "null"} {
		assert.Equal(t, http.StatusBadRequest, c.do("POST", "/api/favorites/import", bad).Code, bad)
	}
}

func TestComparisonCapacity(t *testing.T) {
	c, _ := newClient(t)

	for _, id := range []string{"1", "2", "3"} {
		require.Equal(t, http.StatusOK, c.do("PUT", "/api/comparison/"+id, "").Code)
	}
	rec := c.do("PUT", "/api/comparison/4", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "comparison is full", decode[map[string]string](t, rec)["error"])

	assert.Equal(t, http.StatusOK, c.do("PUT", "/api/comparison/2", "").Code)
	assert.JSONEq(t, `{"state":"full"}`, c.do("POST", "/api/comparison/4/toggle", "").Body.String())
	assert.JSONEq(t, `{"state":"removed"}`, c.do("POST", "/api/comparison/1/toggle", "").Body.String())
	assert.JSONEq(t, `{"state":"added"}`, c.do("POST", "/api/comparison/4/toggle", "").Body.String())

	list := decode[comparisonBody](t, c.do("GET", "/api/comparison", ""))
	assert.Equal(t, []int{2, 3, 4}, list.IDs)
	assert.Equal(t, 3, list.Capacity)

	rec = c.do("DELETE", "/api/comparison/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2, 4}, decode[comparisonBody](t, rec).IDs)

	assert.Equal(t, http.StatusNoContent, c.do("DELETE", "/api/comparison", "").Code)
	assert.Empty(t, decode[comparisonBody](t, c.do("GET", "/api/comparison", "")).IDs)
}

func TestComparisonCustomCapacity(t *testing.T) {
	c, _ := newClient(t, func(d *Deps) { d.PrefsOptions = []prefs.Option{prefs.WithCapacity(1)} })
	require.Equal(t, http.StatusOK, c.do("PUT", "/api/comparison/1", "").Code)
	assert.Equal(t, http.StatusConflict, c.do("PUT", "/api/comparison/2", "").Code)
}

func TestTheme(t *testing.T) {
	c, _ := newClient(t)

	assert.JSONEq(t, `{"theme":"sport"}`, c.do("GET", "/api/theme", "").Body.String())

	rec := c.do("PUT", "/api/theme", `{"theme":"eco"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"eco"}`, c.do("GET", "/api/theme", "").Body.String())

	assert.Equal(t, http.StatusBadRequest, c.do("PUT", "/api/theme", `{"theme":"neon"}`).Code)
	assert.Equal(t, http.StatusBadRequest, c.do("PUT", "/api/theme", `theme=eco`).Code)
	assert.JSONEq(t, `{"theme":"eco"}`, c.do("GET", "/api/theme", "").Body.String())
}

type downKV struct{}

func (downKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("dial tcp: connection refused")
}

func (downKV) Set(context.Context, string, string) error {
	return errors.New("dial tcp: connection refused")
}

func (downKV) Update(context.Context, string, prefs.UpdateFunc) error {
	return errors.New("dial tcp: connection refused")
}

func TestStorageUnavailable(t *testing.T) {
	c, reg := newClient(t, func(d *Deps) { d.KV = downKV{} })

	rec := c.do("GET", "/api/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[idsResponse](t, rec).IDs)

	assert.Equal(t, http.StatusServiceUnavailable, c.do("PUT", "/api/favorites/1", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, c.do("PUT", "/api/comparison/1", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, c.do("POST", "/api/comparison/1/toggle", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, c.do("DELETE", "/api/comparison", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, c.do("PUT", "/api/theme", `{"theme":"eco"}`).Code)
	assert.JSONEq(t, `{"theme":"sport"}`, c.do("GET", "/api/theme", "").Body.String())

	failures := reg.Counter("carexplorer_prefs_storage_failures_total", "", "op")
	assert.Greater(t, testutil.ToFloat64(failures.WithLabelValues("read")), 0.0)
}

func TestCatalogSwapIsVisible(t *testing.T) {
	h := catalog.NewHolder(catalogtest.Store(catalogtest.Alpha))
	c, _ := newClient(t, func(d *Deps) { d.Catalog = h })
	assert.JSONEq(t, `{"status":"ok","cars":1}`, c.do("GET", "/api/health", "").Body.String())

	h.Swap(catalogtest.Store(catalogtest.Alpha, catalogtest.Beta))
	assert.JSONEq(t, `{"status":"ok","cars":2}`, c.do("GET", "/api/health", "").Body.String())
}

func TestMount(t *testing.T) {
	reg := metrics.New()
	s := New(Deps{Metrics: reg})
	s.Mount("GET /metrics", reg.Handler())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
