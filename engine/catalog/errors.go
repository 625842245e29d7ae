package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCatalog is wrapped by every load failure caused by the
	// catalog content rather than by the transport.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrCarNotFound is returned for lookups of IDs absent from the snapshot.
	ErrCarNotFound = errors.New("car not found")

	ErrDuplicateID   = errors.New("duplicate id")
	ErrNonPositiveID = errors.New("id must be positive")
	ErrNegativeValue = errors.New("value must be non-negative")
)

// ValidationError names the record and field that broke a catalog invariant.
type ValidationError struct {
	CarID   int
	Field   Field
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog: car %d: %s: %s (value=%q)", e.CarID, e.Field, e.Wrapped, e.Value)
}

func (e *ValidationError) Unwrap() []error { return []error{e.Wrapped, ErrInvalidCatalog} }
