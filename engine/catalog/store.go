package catalog

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"
)

// Store is one immutable catalog snapshot.
type Store struct {
	cars     []Car
	index    map[int]int
	source   string
	loadedAt time.Time
}

// NewStore validates cars and builds a snapshot over a private copy of them.
func NewStore(source string, cars []Car) (*Store, error) {
	if err := Validate(cars); err != nil {
		return nil, fmt.Errorf("catalog: build from %s: %w", source, err)
	}
	return newStore(source, cars), nil
}

// All returns the records in catalog order. The slice is a copy.
func (s *Store) All() []Car { return slices.Clone(s.cars) }

func (s *Store) Len() int { return len(s.cars) }

// Source names where the snapshot was loaded from.
func (s *Store) Source() string { return s.source }

func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// ByID looks up one record.
func (s *Store) ByID(id int) (Car, bool) {
	i, ok := s.index[id]
	if !ok {
		return Car{}, false
	}
	return s.cars[i], true
}

// Get is ByID returning ErrCarNotFound for unknown IDs.
func (s *Store) Get(id int) (Car, error) {
	c, ok := s.ByID(id)
	if !ok {
		return Car{}, fmt.Errorf("catalog: id %d: %w", id, ErrCarNotFound)
	}
	return c, nil
}

// Resolve maps ids to records in ids order, skipping IDs the snapshot does
// not contain. The result is never nil.
func (s *Store) Resolve(ids []int) []Car {
	out := make([]Car, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.ByID(id); ok {
			out = append(out, c)
		}
	}
	return out
}

var emptyStore = &Store{cars: []Car{}, index: map[int]int{}, source: "empty"}

// Holder publishes the current snapshot. Readers never block and always see a
// complete snapshot.
type Holder struct {
	cur atomic.Pointer[Store]
}

func NewHolder(s *Store) *Holder {
	h := &Holder{}
	if s != nil {
		h.cur.Store(s)
	}
	return h
}

// Current returns the published snapshot, or an empty one before the first
// load.
func (h *Holder) Current() *Store {
	if s := h.cur.Load(); s != nil {
		return s
	}
	return emptyStore
}

// Swap publishes s and returns the snapshot it replaced.
func (h *Holder) Swap(s *Store) *Store { return h.cur.Swap(s) }
