package capture

import (
	"sync"

	"outlook-email-extractor/internal/models"
)

// Store keeps captured emails in memory, in capture order, unique by models.Key
type Store struct {
	mu        sync.RWMutex
	emails    []models.CapturedEmail
	keys      map[models.Key]struct{}
	listeners []func(models.CapturedEmail)
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{keys: make(map[models.Key]struct{})}
}

// Add appends email unless a record with the same key exists. Listeners run after the append,
// outside the lock.
func (s *Store) Add(email models.CapturedEmail) bool {
	s.mu.Lock()
	key := email.Key()
	if _, exists := s.keys[key]; exists {
		s.mu.Unlock()
		return false
	}
	s.keys[key] = struct{}{}
	s.emails = append(s.emails, email)
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(email)
	}
	return true
}

// List returns a copy of the stored emails
func (s *Store) List() []models.CapturedEmail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CapturedEmail, len(s.emails))
	copy(out, s.emails)
	return out
}

// Len returns the number of stored emails
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails)
}

// Clear removes every email and returns how many were dropped
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.emails)
	s.emails = nil
	s.keys = make(map[models.Key]struct{})
	return n
}

// OnAppend registers fn to be called with every newly stored email
func (s *Store) OnAppend(fn func(models.CapturedEmail)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
