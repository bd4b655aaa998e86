package inmemorystore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/dataexpr/internal/collection"
	"github.com/specialistvlad/dataexpr/internal/ctxlog"
	"github.com/specialistvlad/dataexpr/internal/equality"
	"github.com/specialistvlad/dataexpr/internal/expr"
	"github.com/specialistvlad/dataexpr/internal/keys"
)

// ErrDuplicateKey is returned by Insert when a record with the same key exists.
var ErrDuplicateKey = errors.New("duplicate key")

// Store is an in-memory collection.Collection over an ordered record slice.
type Store struct {
	mu    sync.RWMutex
	key   keys.Descriptor
	items []any
}

var (
	_ collection.Collection = (*Store)(nil)
	_ collection.Lister     = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithKey sets the key descriptor of the store.
func WithKey(d keys.Descriptor) Option {
	return func(s *Store) { s.key = d }
}

// New creates a store holding a copy of items.
func New(items []any, opts ...Option) *Store {
	s := &Store{items: append([]any(nil), items...)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default is the factory used when no external data source is configured.
func Default(items []any, opts ...Option) collection.Collection {
	return New(items, opts...)
}

// Key returns the key descriptor of the store.
func (s *Store) Key() keys.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// LoadSingle returns the first record matching value under e.
func (s *Store) LoadSingle(ctx context.Context, e expr.Expression, value any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	logger := ctxlog.FromContext(ctx)

	if s.byKey(e) {
		for _, item := range s.items {
			if equality.Equal(keys.Project(item, s.key), value, s.key) {
				return item, nil
			}
		}
		logger.Debug("No record with key.", "key", s.key.String(), "value", value)
		return nil, fmt.Errorf("key %s = %v: %w", s.key, value, collection.ErrNotFound)
	}

	get, err := expr.Compile(e)
	if err != nil {
		return nil, fmt.Errorf("compiling lookup expression %s: %w", e, err)
	}
	for _, item := range s.items {
		if equality.Equal(get(item), value, keys.None) {
			return item, nil
		}
	}
	logger.Debug("No record matches expression.", "expr", e.String(), "value", value)
	return nil, fmt.Errorf("%s = %v: %w", e, value, collection.ErrNotFound)
}

// byKey reports whether e selects records by their key.
func (s *Store) byKey(e expr.Expression) bool {
	if e.IsIdentity() {
		return true
	}
	if s.key.IsZero() || s.key.IsComposite() || e.Kind() != expr.KindPath {
		return false
	}
	return e.Equal(expr.Path(s.key.Name()))
}

// All returns a copy of the records in insertion order.
func (s *Store) All(ctx context.Context) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]any(nil), s.items...), nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Insert appends item. With a key configured, an item whose key is already
// present is rejected.
func (s *Store) Insert(ctx context.Context, item any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.key.IsZero() {
		k := keys.Project(item, s.key)
		if s.indexOf(k) >= 0 {
			return fmt.Errorf("inserting %v: %w", k, ErrDuplicateKey)
		}
	}
	s.items = append(s.items, item)
	return nil
}

// Remove deletes the record whose key equals key.
func (s *Store) Remove(ctx context.Context, key any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return fmt.Errorf("removing %v: %w", key, collection.ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) indexOf(key any) int {
	for i, item := range s.items {
		if equality.Equal(keys.Project(item, s.key), key, s.key) {
			return i
		}
	}
	return -1
}
