package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/openroads/corridor/internal/lib/corridor"
)

// ErrNotFound is returned when no corridor is published under an ID.
var ErrNotFound = errors.New("corridor not found")

// Store holds published corridor snapshots. A rebuild replaces a corridor
// atomically and wholesale; readers never observe a partial update. Corridors
// are read-mostly and shared by many concurrent match requests.
type Store struct {
	mu        sync.RWMutex
	corridors map[string]*corridor.Corridor
}

// NewStore creates an empty corridor store.
func NewStore() *Store {
	return &Store{corridors: make(map[string]*corridor.Corridor)}
}

// Publish replaces the snapshot for the corridor's ID.
func (s *Store) Publish(c *corridor.Corridor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corridors[c.ID] = c
}

// Get returns the published snapshot for an ID.
func (s *Store) Get(corridorID string) (*corridor.Corridor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.corridors[corridorID]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// IDs returns the published corridor IDs, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.corridors))
	for id := range s.corridors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GapReport returns the unresolved discontinuities of every published
// corridor, for operator review.
func (s *Store) GapReport() map[string][]corridor.Gap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]corridor.Gap, len(s.corridors))
	for id, c := range s.corridors {
		out[id] = append([]corridor.Gap(nil), c.Gaps...)
	}
	return out
}
