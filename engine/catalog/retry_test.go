package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/WessleyAI/car-explorer/pkg/resilience"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &StatusError{Code: http.StatusBadGateway}, true},
		{"too many requests", &StatusError{Code: http.StatusTooManyRequests}, true},
		{"not found", &StatusError{Code: http.StatusNotFound}, false},
		{"forbidden wrapped", fmt.Errorf("fetch: %w", &StatusError{Code: http.StatusForbidden}), false},
		{"oversized", fmt.Errorf("%w: 1 bytes", ErrCatalogTooLarge), false},
		{"network", errors.New("connection reset"), true},
		{"breaker open", resilience.ErrCircuitOpen, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryable(tt.err); got != tt.want {
				t.Fatalf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
