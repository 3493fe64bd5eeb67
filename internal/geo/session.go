package geo

import (
	"sync"

	"github.com/voltpath/stationfinder/internal/models"
)

// Session is the per-user context owned by whoever orchestrates searches.
// It remembers the last device fix so repeat searches skip the permission
// prompt, and it hands out search generations so stale results can be told
// apart from the latest one.
type Session struct {
	mu         sync.RWMutex
	last       *models.Coordinate
	generation uint64
}

func NewSession() *Session {
	return &Session{}
}

// LastKnown returns the cached fix, if any
func (s *Session) LastKnown() (models.Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return models.Coordinate{}, false
	}
	return *s.last, true
}

// Remember overwrites the cached fix
func (s *Session) Remember(c models.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = &c
}

// Reset forgets the cached fix
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = nil
}

// BeginSearch starts a new search generation and returns its token
func (s *Session) BeginSearch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	return s.generation
}

// IsCurrent reports whether no search has started since token was issued
func (s *Session) IsCurrent(token uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generation == token
}
