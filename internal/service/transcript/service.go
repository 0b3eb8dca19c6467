// Package transcript stores the ordered, append-only dialogue history of
// each consultation.
package transcript

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kairoslabs/kairos/internal/model/advisory"
)

var ErrSessionNotFound = errors.New("transcript session not found")

// Service keeps per-session dialogue turns in memory. Sessions never share
// state; a host process may run several consultations concurrently.
type Service struct {
	mu    sync.RWMutex
	turns map[string][]advisory.Turn
}

// NewService bootstraps the in-memory transcript store.
func NewService() *Service {
	return &Service{
		turns: make(map[string][]advisory.Turn),
	}
}

// Create provisions an empty transcript and returns its session ID.
func (s *Service) Create(_ context.Context) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.turns[id] = make([]advisory.Turn, 0, 16)
	s.mu.Unlock()

	return id
}

// Append adds one role-tagged turn to the session's history.
func (s *Service) Append(_ context.Context, sessionID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	s.turns[sessionID] = append(turns, advisory.Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// History returns a copy of the session's turns in insertion order.
func (s *Service) History(_ context.Context, sessionID string) ([]advisory.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]advisory.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}
