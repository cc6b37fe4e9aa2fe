package session

import (
	"sync"

	"github.com/kdimtricp/damagecheck/internal/models"
)

// Store holds the most recent assessment of one browser session.
// Callers always get and hand over copies, so nothing outside can mutate the slot.
type Store struct {
	mu     sync.RWMutex
	result *models.AssessmentResult
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Set(result *models.AssessmentResult) {
	c := result.Clone()
	s.mu.Lock()
	s.result = c
	s.mu.Unlock()
}

func (s *Store) Read() (*models.AssessmentResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil, false
	}
	return s.result.Clone(), true
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()
}
