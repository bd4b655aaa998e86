// Package options stores the named options of a binding and notifies
// observers when they change.
//
// Delivery is synchronous: Set returns after every observer has run, and
// observers run in subscription order. Setting an option to a value that is
// the same as the current one (see canon.Same) notifies nobody.
package options

import (
	"sync"

	"github.com/google/uuid"

	"github.com/specialistvlad/dataexpr/internal/canon"
)

// Name identifies an option.
type Name string

const (
	Items        Name = "items"
	DataSource   Name = "dataSource"
	ItemTemplate Name = "itemTemplate"
	Value        Name = "value"
	ValueExpr    Name = "valueExpr"
	DisplayExpr  Name = "displayExpr"
	// Key is the key descriptor given to the default collection built from
	// Items.
	Key Name = "key"
)

// DefaultItemTemplate renders each item through the display getter.
const DefaultItemTemplate = "item"

// Defaults returns the initial option values.
func Defaults() map[Name]any {
	return map[Name]any{
		Items:        []any{},
		DataSource:   nil,
		ItemTemplate: DefaultItemTemplate,
		Value:        nil,
		ValueExpr:    "this",
		DisplayExpr:  nil,
		Key:          nil,
	}
}

// Change describes one option update.
type Change struct {
	Name     Name
	OldValue any
	NewValue any
}

// Observer is called after an option changed.
type Observer func(change Change)

type subscriber struct {
	id       string
	name     Name // empty for every option
	observer Observer
}

// Subscription is an active observer registration.
type Subscription struct {
	id    string
	store *Store
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Unsubscribe removes the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.store != nil {
		s.store.unsubscribe(s.id)
	}
}

// Store holds option values.
type Store struct {
	mu     sync.RWMutex
	values map[Name]any
	subs   []subscriber
}

// New returns a store holding Defaults overlaid with initial.
func New(initial map[Name]any) *Store {
	values := Defaults()
	for k, v := range initial {
		values[k] = v
	}
	return &Store{values: values}
}

// Get returns the current value of name.
func (s *Store) Get(name Name) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Snapshot returns a copy of every option.
func (s *Store) Snapshot() map[Name]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Name]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set stores value under name and notifies observers. It reports whether the
// option changed.
func (s *Store) Set(name Name, value any) bool {
	s.mu.Lock()
	old, had := s.values[name]
	if had && canon.Same(old, value) {
		s.mu.Unlock()
		return false
	}
	s.values[name] = value
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	change := Change{Name: name, OldValue: old, NewValue: value}
	for _, sub := range subs {
		if sub.name == "" || sub.name == name {
			sub.observer(change)
		}
	}
	return true
}

// Subscribe registers observer for changes to every option.
func (s *Store) Subscribe(observer Observer) *Subscription {
	return s.subscribe("", observer)
}

// SubscribeName registers observer for changes to name only.
func (s *Store) SubscribeName(name Name, observer Observer) *Subscription {
	return s.subscribe(name, observer)
}

func (s *Store) subscribe(name Name, observer Observer) *Subscription {
	id := uuid.NewString()
	s.mu.Lock()
	s.subs = append(s.subs, subscriber{id: id, name: name, observer: observer})
	s.mu.Unlock()
	return &Subscription{id: id, store: s}
}

func (s *Store) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}
