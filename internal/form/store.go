package form

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultCountries are the selectable countries.
//
//nolint:gochecknoglobals // Fixed option list.
var DefaultCountries = []string{
	"USA", "Belarus", "Germany", "France", "Russia", "Ukraine", "Poland", "Spain", "Italy",
}

// Record is an accepted submission.
type Record struct {
	ID         string     `json:"id"`
	Submission Submission `json:"submission"`
	IsNew      bool       `json:"isNew"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Store keeps accepted submissions in arrival order. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	records   []Record
	countries []string
}

// NewStore creates an empty store offering DefaultCountries.
func NewStore() *Store {
	return &Store{countries: append([]string(nil), DefaultCountries...)}
}

// Countries returns the selectable countries.
func (s *Store) Countries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.countries...)
}

// Add stores sub as a new record.
func (s *Store) Add(sub Submission) Record {
	rec := Record{
		ID:         ulid.Make().String(),
		Submission: sub,
		IsNew:      true,
		CreatedAt:  time.Now(),
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec
}

// MarkAsRead clears the new flag on id and reports whether id exists.
func (s *Store) MarkAsRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].IsNew = false
			return true
		}
	}
	return false
}

// Records returns a copy of every record.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}
