// Package favorites keeps the locally persisted set of favorite movie ids.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/popcorn/kv"
)

// StorageKey is the key the id list is persisted under
const StorageKey = "favoriteMovieIds"

// Store is a persisted set of movie ids. Mutations are serialized: each one
// persists the full set and then notifies subscribers, in mutation order.
type Store struct {
	kv     kv.Store
	logger zerolog.Logger

	mu  sync.Mutex
	ids map[int]struct{}

	// pubMu is taken before mu is released so notifications keep mutation order
	pubMu sync.Mutex

	obsMu     sync.Mutex
	observers map[int]func(ids []int)
	nextObs   int
}

// New loads the persisted set. It never fails: missing or unreadable data
// starts an empty set.
func New(ctx context.Context, store kv.Store, logger zerolog.Logger) *Store {
	s := &Store{
		kv:        store,
		logger:    logger,
		ids:       make(map[int]struct{}),
		observers: make(map[int]func(ids []int)),
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load favorites, starting empty")
		return
	}

	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode favorites, starting empty")
		return
	}

	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	s.logger.Debug().Int("count", len(s.ids)).Msg("Loaded favorites")
}

// Add marks id as a favorite
func (s *Store) Add(ctx context.Context, id int) error {
	return s.mutate(ctx, func(ids map[int]struct{}) bool {
		if _, ok := ids[id]; ok {
			return false
		}
		ids[id] = struct{}{}
		return true
	})
}

// Remove unmarks id
func (s *Store) Remove(ctx context.Context, id int) error {
	return s.mutate(ctx, func(ids map[int]struct{}) bool {
		if _, ok := ids[id]; !ok {
			return false
		}
		delete(ids, id)
		return true
	})
}

// Toggle adds id if absent and removes it if present, returning the new membership
func (s *Store) Toggle(ctx context.Context, id int) (bool, error) {
	var added bool
	err := s.mutate(ctx, func(ids map[int]struct{}) bool {
		if _, ok := ids[id]; ok {
			delete(ids, id)
			added = false
		} else {
			ids[id] = struct{}{}
			added = true
		}
		return true
	})
	if err != nil {
		return !added, err
	}
	return added, nil
}

// Contains reports whether id is a favorite
func (s *Store) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[id]
	return ok
}

// All returns the favorite ids in ascending order
func (s *Store) All() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedIDs(s.ids)
}

// Len returns the number of favorites
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}

// Subscribe registers fn to receive the full id set after every change.
// fn runs on the mutating goroutine and must not mutate the store itself.
func (s *Store) Subscribe(fn func(ids []int)) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

// mutate applies change, persists the result and publishes it. When persisting
// fails the change is rolled back and nothing is published.
func (s *Store) mutate(ctx context.Context, change func(ids map[int]struct{}) bool) error {
	s.mu.Lock()

	prev := maps.Clone(s.ids)
	if !change(s.ids) {
		s.mu.Unlock()
		return nil
	}

	snapshot := sortedIDs(s.ids)
	if err := s.persist(ctx, snapshot); err != nil {
		s.ids = prev
		s.mu.Unlock()
		return err
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	s.publish(snapshot)
	return nil
}

func (s *Store) persist(ctx context.Context, ids []int) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save favorites")
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

func (s *Store) publish(ids []int) {
	s.obsMu.Lock()
	observers := make([]func([]int), 0, len(s.observers))
	for _, k := range slices.Sorted(maps.Keys(s.observers)) {
		observers = append(observers, s.observers[k])
	}
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(slices.Clone(ids))
	}
}

func sortedIDs(ids map[int]struct{}) []int {
	out := slices.Sorted(maps.Keys(ids))
	if out == nil {
		out = []int{}
	}
	return out
}
