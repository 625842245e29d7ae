// Package prefs stores per-session favorites, the comparison set and the
// theme on top of a string key-value store. Storage failures never reach
// callers: they are logged, counted and reported as false or empty results.
package prefs

import (
	"context"
	"sync"
)

// UpdateFunc computes the new value at a key from the current one. found is
// false when the key is absent. Returning an error leaves the key untouched.
type UpdateFunc func(old string, found bool) (string, error)

// KV is the key-value store preferences are kept in.
type KV interface {
	// Get returns the value at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Update applies f to the value at key atomically with respect to other
	// writers of the same key. f may run more than once. Errors from f are
	// returned wrapped.
	Update(ctx context.Context, key string, f UpdateFunc) error
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Update holds the write lock across f.
func (m *MemoryKV) Update(ctx context.Context, key string, f UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.data[key]
	next, err := f(old, ok)
	if err != nil {
		return err
	}
	m.data[key] = next
	return nil
}
