package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pelletier/go-toml/v2"

	"github.com/WessleyAI/car-explorer/pkg/fn"
	"github.com/WessleyAI/car-explorer/pkg/resilience"
)

// Source produces the records of a catalog snapshot.
type Source interface {
	Name() string
	Cars(ctx context.Context) ([]Car, error)
}

// Decode parses a JSON array of car records. A null document is an empty
// catalog.
func Decode(data []byte) ([]Car, error) {
	var cars []Car
	if err := sonic.Unmarshal(data, &cars); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w: %w", ErrInvalidCatalog, err)
	}
	if cars == nil {
		cars = []Car{}
	}
	return cars, nil
}

// tomlCatalog is the TOML layout of a catalog: one [[cars]] table per record.
type tomlCatalog struct {
	Cars []Car `toml:"cars"`
}

// DecodeTOML parses a TOML document of [[cars]] tables.
func DecodeTOML(data []byte) ([]Car, error) {
	var doc tomlCatalog
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode toml: %w: %w", ErrInvalidCatalog, err)
	}
	if doc.Cars == nil {
		doc.Cars = []Car{}
	}
	return doc.Cars, nil
}

// BytesSource serves a catalog document held in memory, typically one
// embedded in the binary.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string { return s.Label }

func (s BytesSource) Cars(context.Context) ([]Car, error) { return Decode(s.Data) }

// FileSource reads a catalog document from disk on every load. Files ending
// in .toml are read as TOML, anything else as JSON.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Cars(ctx context.Context) ([]Car, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", s.Path, err)
	}
	if strings.EqualFold(filepath.Ext(s.Path), ".toml") {
		return DecodeTOML(data)
	}
	return Decode(data)
}

// HTTPSource downloads a catalog document. Transient failures are retried
// with backoff and repeated failures open a circuit breaker.
type HTTPSource struct {
	url     string
	client  *http.Client
	retry   fn.RetryOpts
	breaker *resilience.Breaker
	limit   int64
}

type HTTPOption func(*HTTPSource)

func WithHTTPClient(c *http.Client) HTTPOption { return func(s *HTTPSource) { s.client = c } }

func WithRetry(opts fn.RetryOpts) HTTPOption { return func(s *HTTPSource) { s.retry = opts } }

func WithBreaker(b *resilience.Breaker) HTTPOption { return func(s *HTTPSource) { s.breaker = b } }

// WithMaxBytes overrides MaxCatalogBytes.
func WithMaxBytes(n int64) HTTPOption { return func(s *HTTPSource) { s.limit = n } }

func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:     url,
		client:  &http.Client{Timeout: 15 * time.Second},
		retry:   fn.DefaultRetry,
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		limit:   MaxCatalogBytes,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *HTTPSource) Name() string { return "http:" + s.url }

// MaxCatalogBytes bounds the size of a fetched catalog document.
const MaxCatalogBytes = 32 << 20

var ErrCatalogTooLarge = errors.New("catalog: document too large")

// StatusError is a non-2xx answer from a catalog endpoint.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: fetch %s: status %d", e.URL, e.Code)
}

// Temporary reports whether asking again may succeed: server errors and 429
// are, other client errors are not.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, ErrCatalogTooLarge)
}

func (s *HTTPSource) Cars(ctx context.Context) ([]Car, error) {
	opts := s.retry
	if opts.Retryable == nil {
		opts.Retryable = retryable
	}
	data, err := fn.Retry(ctx, opts, func(ctx context.Context) fn.Result[[]byte] {
		return resilience.CallResult(s.breaker, ctx, s.fetch)
	}).Unwrap()
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (s *HTTPSource) fetch(ctx context.Context) fn.Result[[]byte] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fn.Err[[]byte](fmt.Errorf("catalog: request %s: %w", s.url, err))
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fn.Err[[]byte](fmt.Errorf("catalog: fetch %s: %w", s.url, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fn.Err[[]byte](&StatusError{URL: s.url, Code: resp.StatusCode})
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.limit+1))
	if err != nil {
		return fn.Err[[]byte](fmt.Errorf("catalog: read %s: %w", s.url, err))
	}
	if int64(len(data)) > s.limit {
		return fn.Err[[]byte](fmt.Errorf("%w: %s exceeds %d bytes", ErrCatalogTooLarge, s.url, s.limit))
	}
	return fn.Ok(data)
}
