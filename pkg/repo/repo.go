// Package repo defines generic record repositories and a Neo4j-backed
// implementation.
package repo

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("repo: not found")

// Reader loads records.
type Reader[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
}

// Writer persists records, creating or replacing by ID.
type Writer[T any] interface {
	Upsert(ctx context.Context, entity T) error
}

// ListOpts controls ordering and paging for List. A zero Limit returns every
// record.
type ListOpts struct {
	Offset  int
	Limit   int
	OrderBy string
}
