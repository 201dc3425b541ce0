// Package collection manages the user's keyed property sets (favorites and
// portfolio). A set is loaded lazily from durable state and every mutation
// writes the complete set back before it returns.
package collection

import (
	"context"
	"fmt"
	"sync"

	"github.com/gta-invest/propertymap/pkg/model"
)

// State keys of the durable key-value store.
const (
	FavoritesKey        = "favorites"
	PortfolioKey        = "portfolio"
	PortfolioHistoryKey = "portfolioHistory"
	SettingsKey         = "settings"
	ReportConfigsKey    = "reportConfigs"
)

// StateStore persists JSON-serialisable values by key.
// Load reports false when the key has never been saved.
type StateStore interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, value any) error
}

// Keyed is an entity identified by a comparable key.
type Keyed[K comparable] interface {
	Key() K
}

// Set is an insertion-ordered set of entities, unique by key.
type Set[K comparable, T Keyed[K]] struct {
	mu     sync.Mutex
	store  StateStore
	key    string
	items  []T
	loaded bool
}

// NewSet returns a set persisted under key.
func NewSet[K comparable, T Keyed[K]](store StateStore, key string) *Set[K, T] {
	return &Set[K, T]{store: store, key: key}
}

// Favorites is the favorite-properties set.
type Favorites = Set[int64, model.Property]

// Portfolio is the owned-properties set.
type Portfolio = Set[int64, model.PortfolioProperty]

// NewFavorites returns the favorites set stored under FavoritesKey.
func NewFavorites(store StateStore) *Favorites {
	return NewSet[int64, model.Property](store, FavoritesKey)
}

// NewPortfolio returns the portfolio set stored under PortfolioKey.
func NewPortfolio(store StateStore) *Portfolio {
	return NewSet[int64, model.PortfolioProperty](store, PortfolioKey)
}

// ensureLoaded must be called with mu held.
func (s *Set[K, T]) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	var items []T
	if _, err := s.store.Load(ctx, s.key, &items); err != nil {
		return fmt.Errorf("load %s: %w", s.key, err)
	}
	s.items = dedupe(items)
	s.loaded = true
	return nil
}

// persist writes next as the full set and adopts it only on success.
func (s *Set[K, T]) persist(ctx context.Context, next []T) error {
	if next == nil {
		next = []T{}
	}
	if err := s.store.Save(ctx, s.key, next); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	s.items = next
	return nil
}

func (s *Set[K, T]) indexOf(id K) int {
	for i, item := range s.items {
		if item.Key() == id {
			return i
		}
	}
	return -1
}

// Add appends item unless an entity with the same key is present.
// It reports whether the set changed.
func (s *Set[K, T]) Add(ctx context.Context, item T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	if s.indexOf(item.Key()) >= 0 {
		return false, nil
	}
	next := append(s.clone(), item)
	return true, s.persist(ctx, next)
}

// AddAll appends every item whose key is not yet present, in order, and
// returns how many were added.
func (s *Set[K, T]) AddAll(ctx context.Context, items []T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	next := s.clone()
	seen := make(map[K]struct{}, len(next)+len(items))
	for _, item := range next {
		seen[item.Key()] = struct{}{}
	}
	added := 0
	for _, item := range items {
		if _, ok := seen[item.Key()]; ok {
			continue
		}
		seen[item.Key()] = struct{}{}
		next = append(next, item)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.persist(ctx, next)
}

// Remove deletes the entity with key id and reports whether it was present.
func (s *Set[K, T]) Remove(ctx context.Context, id K) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := make([]T, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	return true, s.persist(ctx, next)
}

// Contains reports whether an entity with key id is in the set.
func (s *Set[K, T]) Contains(ctx context.Context, id K) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return s.indexOf(id) >= 0, nil
}

// Toggle removes item if its key is present and adds it otherwise.
// It reports whether the item is in the set afterwards.
func (s *Set[K, T]) Toggle(ctx context.Context, item T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	if i := s.indexOf(item.Key()); i >= 0 {
		next := make([]T, 0, len(s.items)-1)
		next = append(next, s.items[:i]...)
		next = append(next, s.items[i+1:]...)
		return false, s.persist(ctx, next)
	}
	return true, s.persist(ctx, append(s.clone(), item))
}

// List returns a copy of the set in insertion order.
func (s *Set[K, T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.clone(), nil
}

// Reload discards the cached set so the next call reads durable state again.
func (s *Set[K, T]) Reload() {
	s.mu.Lock()
	s.loaded = false
	s.items = nil
	s.mu.Unlock()
}

func (s *Set[K, T]) clone() []T {
	out := make([]T, len(s.items), len(s.items)+1)
	copy(out, s.items)
	return out
}

// dedupe keeps the first entity per key; stored state written by older clients
// may contain repeats.
func dedupe[K comparable, T Keyed[K]](items []T) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Key()]; ok {
			continue
		}
		seen[item.Key()] = struct{}{}
		out = append(out, item)
	}
	return out
}
