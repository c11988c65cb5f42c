package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

// Store is the in-memory catalog collection. Load replaces the collection
// wholesale; readers never observe a partial load. Entities are treated as
// immutable once loaded.
type Store struct {
	mu        sync.RWMutex
	entities  []apptype.CatalogEntity
	byID      map[string]int
	byDisplay map[string]int // lowercased display name -> index
	loaded    bool
}

// NewStore creates an empty, not-yet-loaded store.
func NewStore() *Store {
	return &Store{
		byID:      make(map[string]int),
		byDisplay: make(map[string]int),
	}
}

// Load replaces the current collection with the given entities. It fails
// with DuplicateIdentifierError if two entities share an identifier, and
// keeps the previous collection on any failure.
func (s *Store) Load(entities []apptype.CatalogEntity) error {
	byID := make(map[string]int, len(entities))
	byDisplay := make(map[string]int, len(entities))
	for i, e := range entities {
		if e.Identifier == "" {
			return fmt.Errorf("catalog entity at index %d has no identifier", i)
		}
		if e.DisplayName == "" {
			return fmt.Errorf("catalog entity %q has no display name", e.Identifier)
		}
		if _, dup := byID[e.Identifier]; dup {
			return &DuplicateIdentifierError{Identifier: e.Identifier}
		}
		byID[e.Identifier] = i
		byDisplay[strings.ToLower(e.DisplayName)] = i
	}

	copied := make([]apptype.CatalogEntity, len(entities))
	copy(copied, entities)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = copied
	s.byID = byID
	s.byDisplay = byDisplay
	s.loaded = true
	return nil
}

// Loaded reports whether the store has been populated at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// All returns the live collection. Callers must treat the slice as a
// read-only snapshot.
func (s *Store) All() []apptype.CatalogEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities
}

// Len returns the number of entities currently loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// ByIdentifier looks up an entity by its stable identifier.
func (s *Store) ByIdentifier(id string) (apptype.CatalogEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return apptype.CatalogEntity{}, ErrNotLoaded
	}
	i, ok := s.byID[id]
	if !ok {
		return apptype.CatalogEntity{}, &EntityNotFoundError{Identifier: id}
	}
	return s.entities[i], nil
}

// ByDisplayName looks up an entity by display name, case-insensitively.
func (s *Store) ByDisplayName(name string) (apptype.CatalogEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byDisplay[strings.ToLower(name)]
	if !ok {
		return apptype.CatalogEntity{}, false
	}
	return s.entities[i], true
}
