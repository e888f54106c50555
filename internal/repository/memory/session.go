// Package memory implements stores that live in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var _ model.SessionStore = (*SessionSlot)(nil)

// SessionSlot holds at most one session for the whole process. Saving a
// session replaces the current one, whoever owns it.
type SessionSlot struct {
	mu      sync.RWMutex
	current *model.Session
}

func NewSessionSlot() *SessionSlot {
	return &SessionSlot{}
}

func (s *SessionSlot) Save(_ context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &session
	return nil
}

func (s *SessionSlot) Get(_ context.Context, id uuid.UUID) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil || s.current.ID != id {
		return model.Session{}, model.ErrNotFound
	}
	return *s.current, nil
}

func (s *SessionSlot) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return nil
}
