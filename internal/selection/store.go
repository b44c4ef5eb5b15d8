package selection

import (
	"sync"

	"github.com/rshade/dexter/internal/pokeapi"
)

// Item is a selected Pokémon.
type Item struct {
	ID    int      `yaml:"id"`
	Name  string   `yaml:"name"`
	Types []string `yaml:"types,omitempty"`
}

// FromDetail builds an Item from an API record.
func FromDetail(d pokeapi.Detail) Item {
	return Item{ID: d.ID, Name: d.Name, Types: d.TypeNames()}
}

// Store is an insertion-ordered set of items keyed by ID.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items []Item
	ids   map[int]struct{}
}

// NewStore creates a store holding items, skipping duplicate IDs.
func NewStore(items ...Item) *Store {
	s := &Store{ids: make(map[int]struct{})}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add appends item unless its ID is already selected. It reports whether the
// item was added.
func (s *Store) Add(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(item)
}

func (s *Store) add(item Item) bool {
	if _, ok := s.ids[item.ID]; ok {
		return false
	}
	s.ids[item.ID] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// Remove drops the item with id and reports whether it was present.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(id)
}

func (s *Store) remove(id int) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// Toggle adds item if absent, otherwise removes it. It reports whether the
// item is selected afterwards.
func (s *Store) Toggle(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remove(item.ID) {
		return false
	}
	return s.add(item)
}

// Clear removes every item.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.ids = make(map[int]struct{})
}

// Contains reports whether id is selected.
func (s *Store) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Items returns a copy of the items in insertion order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of selected items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
