package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/WessleyAI/car-explorer/pkg/fn"
	"github.com/WessleyAI/car-explorer/pkg/metrics"
)

// Key suffixes, one per preference.
const (
	KeyFavorites  = "carExplorerFavorites"
	KeyComparison = "carExplorerComparison"
	KeyTheme      = "carExplorerTheme"
)

// DefaultCapacity bounds the comparison set.
const DefaultCapacity = 3

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeSport Theme = "sport"
	ThemeEco   Theme = "eco"
)

var ErrInvalidTheme = errors.New("invalid theme")

// ParseTheme accepts "sport" or "eco".
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeSport, ThemeEco:
		return t, nil
	}
	return "", fmt.Errorf("prefs: %q: %w", s, ErrInvalidTheme)
}

// ToggleResult is the outcome of ToggleComparison.
type ToggleResult string

const (
	ToggleAdded   ToggleResult = "added"
	ToggleRemoved ToggleResult = "removed"
	ToggleFull    ToggleResult = "full"
	ToggleFailed  ToggleResult = "failed"
)

// Store is the preference view of one session. It is cheap to create per
// request.
type Store struct {
	kv        KV
	namespace string
	session   string
	capacity  int
	log       *slog.Logger
	notifier  Notifier
	failures  *prometheus.CounterVec
	now       func() time.Time
}

type Option func(*Store)

// WithCapacity sets the comparison bound. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithNamespace sets the key prefix (default "carexplorer").
func WithNamespace(ns string) Option { return func(s *Store) { s.namespace = ns } }

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.log = l } }

func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithMetrics counts storage failures by operation in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Store) {
		s.failures = reg.Counter("carexplorer_prefs_storage_failures_total",
			"Preference storage operations that failed and were degraded.", "op")
	}
}

// New returns the preferences of session held in kv.
func New(kv KV, session string, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		namespace: "carexplorer",
		session:   session,
		capacity:  DefaultCapacity,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) key(suffix string) string {
	if s.namespace == "" {
		return s.session + ":" + suffix
	}
	return s.namespace + ":" + s.session + ":" + suffix
}

// Capacity is the maximum size of the comparison set.
func (s *Store) Capacity() int { return s.capacity }

func (s *Store) fail(op, key string, err error) {
	s.log.Error("preference storage failed", "op", op, "key", key, "err", err)
	if s.failures != nil {
		s.failures.WithLabelValues(op).Inc()
	}
}

// Reasons a list mutation is refused. They are not storage failures.
var (
	errPresent = errors.New("prefs: id already present")
	errAbsent  = errors.New("prefs: id not present")
	errFull    = errors.New("prefs: list is full")
)

var errCorrupt = errors.New("prefs: corrupt id list")

func refused(err error) bool {
	return errors.Is(err, errPresent) || errors.Is(err, errAbsent) || errors.Is(err, errFull)
}

// decodeIDs parses a stored ID list. An absent or empty value is an empty
// list.
func decodeIDs(raw string, found bool) ([]int, error) {
	if !found || raw == "" {
		return []int{}, nil
	}
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return []int{}, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}

// readIDs loads an ID list. ok is false on storage failure or corrupt data;
// an absent key is an empty list.
func (s *Store) readIDs(ctx context.Context, suffix string) (ids []int, ok bool) {
	key := s.key(suffix)
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.fail("read", key, err)
		return []int{}, false
	}
	ids, err = decodeIDs(raw, found)
	if err != nil {
		s.fail("decode", key, err)
		return ids, false
	}
	return ids, true
}

func (s *Store) writeIDs(ctx context.Context, suffix string, ids []int) bool {
	key := s.key(suffix)
	raw, err := json.Marshal(ids)
	if err != nil {
		s.fail("encode", key, err)
		return false
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		s.fail("write", key, err)
		return false
	}
	return true
}

// mutate applies change to the list at suffix in one atomic KV update.
// before is the list change was last given; after is the stored result.
// Refusals from change are returned without being counted as failures.
func (s *Store) mutate(ctx context.Context, suffix string, change func(ids []int) ([]int, error)) (before, after []int, err error) {
	key := s.key(suffix)
	err = s.kv.Update(ctx, key, func(raw string, found bool) (string, error) {
		ids, err := decodeIDs(raw, found)
		if err != nil {
			return "", err
		}
		before = ids
		next, err := change(slices.Clone(ids))
		if err != nil {
			return "", err
		}
		out, err := json.Marshal(next)
		if err != nil {
			return "", err
		}
		after = next
		return string(out), nil
	})
	switch {
	case err == nil, refused(err):
	case errors.Is(err, errCorrupt):
		s.fail("decode", key, err)
	default:
		s.fail("write", key, err)
	}
	return before, after, err
}

func (s *Store) notify(ctx context.Context, kind Kind, action Action, id int, ids []int) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, ChangeEvent{
		Session: s.session,
		Kind:    kind,
		Action:  action,
		CarID:   id,
		IDs:     ids,
		At:      s.now().UTC(),
	})
}

// add appends id to the list at suffix. It fails when id is already present
// or the list already holds limit entries (limit <= 0 means unbounded).
func (s *Store) add(ctx context.Context, kind Kind, suffix string, id, limit int) bool {
	_, ids, err := s.mutate(ctx, suffix, func(ids []int) ([]int, error) {
		if fn.Contains(ids, id) {
			return nil, errPresent
		}
		if limit > 0 && len(ids) >= limit {
			return nil, errFull
		}
		return append(ids, id), nil
	})
	if err != nil {
		return false
	}
	s.notify(ctx, kind, ActionAdd, id, ids)
	return true
}

func (s *Store) remove(ctx context.Context, kind Kind, suffix string, id int) bool {
	_, ids, err := s.mutate(ctx, suffix, func(ids []int) ([]int, error) {
		if !fn.Contains(ids, id) {
			return nil, errAbsent
		}
		return fn.Without(ids, id), nil
	})
	if err != nil {
		return false
	}
	s.notify(ctx, kind, ActionRemove, id, ids)
	return true
}

func (s *Store) clear(ctx context.Context, kind Kind, suffix string) bool {
	if !s.writeIDs(ctx, suffix, []int{}) {
		return false
	}
	s.notify(ctx, kind, ActionClear, 0, []int{})
	return true
}

// Favorites returns the favorite IDs in insertion order.
func (s *Store) Favorites(ctx context.Context) []int {
	ids, _ := s.readIDs(ctx, KeyFavorites)
	return ids
}

// AddFavorite reports false when id is already a favorite or storage failed.
func (s *Store) AddFavorite(ctx context.Context, id int) bool {
	return s.add(ctx, KindFavorites, KeyFavorites, id, 0)
}

// RemoveFavorite reports false when id was not a favorite or storage failed.
func (s *Store) RemoveFavorite(ctx context.Context, id int) bool {
	return s.remove(ctx, KindFavorites, KeyFavorites, id)
}

func (s *Store) IsFavorite(ctx context.Context, id int) bool {
	return fn.Contains(s.Favorites(ctx), id)
}

// ToggleFavorite flips id and returns whether it is now a favorite. On a
// storage failure the state is unchanged and reported as it was read.
func (s *Store) ToggleFavorite(ctx context.Context, id int) bool {
	action := ActionAdd
	before, ids, err := s.mutate(ctx, KeyFavorites, func(ids []int) ([]int, error) {
		if fn.Contains(ids, id) {
			action = ActionRemove
			return fn.Without(ids, id), nil
		}
		action = ActionAdd
		return append(ids, id), nil
	})
	if err != nil {
		return fn.Contains(before, id)
	}
	s.notify(ctx, KindFavorites, action, id, ids)
	return action == ActionAdd
}

func (s *Store) ClearFavorites(ctx context.Context) bool {
	return s.clear(ctx, KindFavorites, KeyFavorites)
}

func (s *Store) FavoriteCount(ctx context.Context) int { return len(s.Favorites(ctx)) }

// ExportFavorites renders the favorites as an indented JSON array.
func (s *Store) ExportFavorites(ctx context.Context) string {
	raw, err := json.MarshalIndent(s.Favorites(ctx), "", "  ")
	if err != nil {
		s.fail("encode", s.key(KeyFavorites), err)
		return "[]"
	}
	return string(raw)
}

// ImportFavorites replaces the favorites with the JSON array in raw.
// Duplicates are dropped. Anything other than an array of integers is
// rejected.
func (s *Store) ImportFavorites(ctx context.Context, raw string) bool {
	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		s.log.Warn("favorites import rejected", "session", s.session, "err", err)
		return false
	}
	ids = fn.Unique(ids)
	if !s.writeIDs(ctx, KeyFavorites, ids) {
		return false
	}
	s.notify(ctx, KindFavorites, ActionImport, 0, ids)
	return true
}

// Comparison returns the comparison set in insertion order.
func (s *Store) Comparison(ctx context.Context) []int {
	ids, _ := s.readIDs(ctx, KeyComparison)
	return ids
}

// AddToComparison reports false when the set is full, id is already in it or
// storage failed.
func (s *Store) AddToComparison(ctx context.Context, id int) bool {
	return s.add(ctx, KindComparison, KeyComparison, id, s.capacity)
}

func (s *Store) RemoveFromComparison(ctx context.Context, id int) bool {
	return s.remove(ctx, KindComparison, KeyComparison, id)
}

func (s *Store) IsInComparison(ctx context.Context, id int) bool {
	return fn.Contains(s.Comparison(ctx), id)
}

func (s *Store) ClearComparison(ctx context.Context) bool {
	return s.clear(ctx, KindComparison, KeyComparison)
}

// ToggleComparison removes id if present and adds it otherwise. ToggleFull
// means the add was refused; ToggleFailed means storage failed and nothing
// changed.
func (s *Store) ToggleComparison(ctx context.Context, id int) ToggleResult {
	result := ToggleAdded
	_, ids, err := s.mutate(ctx, KeyComparison, func(ids []int) ([]int, error) {
		if fn.Contains(ids, id) {
			result = ToggleRemoved
			return fn.Without(ids, id), nil
		}
		if len(ids) >= s.capacity {
			return nil, errFull
		}
		result = ToggleAdded
		return append(ids, id), nil
	})
	switch {
	case errors.Is(err, errFull):
		return ToggleFull
	case err != nil:
		return ToggleFailed
	}
	action := ActionAdd
	if result == ToggleRemoved {
		action = ActionRemove
	}
	s.notify(ctx, KindComparison, action, id, ids)
	return result
}

// Theme returns the stored theme, or ThemeSport when none is stored or it
// cannot be read.
func (s *Store) Theme(ctx context.Context) Theme {
	key := s.key(KeyTheme)
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.fail("read", key, err)
		return ThemeSport
	}
	if !found {
		return ThemeSport
	}
	t, err := ParseTheme(raw)
	if err != nil {
		return ThemeSport
	}
	return t
}

// SetTheme stores t. It reports false for an unknown theme or a storage
// failure.
func (s *Store) SetTheme(ctx context.Context, t Theme) bool {
	if _, err := ParseTheme(string(t)); err != nil {
		return false
	}
	key := s.key(KeyTheme)
	if err := s.kv.Set(ctx, key, string(t)); err != nil {
		s.fail("write", key, err)
		return false
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, ChangeEvent{Session: s.session, Kind: KindTheme, Action: ActionSet, Theme: t, IDs: []int{}, At: s.now().UTC()})
	}
	return true
}
