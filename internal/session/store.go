package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fixit-suporte/fixit-gateway/internal/domain"
)

// Store persists the logged-in actor record for the lifetime of a
// session. The record is the source of truth for every authorization
// check the gateway makes; nothing re-validates it against the backend
// mid-session.
type Store interface {
	// Get returns the actor for the session id, or nil when the session is
	// absent or its payload cannot be decoded. Corruption degrades to
	// "no session", it never surfaces as an error.
	Get(ctx context.Context, sessionID string) (*domain.User, error)
	// Set persists the full actor record under the session id.
	Set(ctx context.Context, sessionID string, actor *domain.User) error
	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error
	// MarkLoggedIn records that the user has logged in at least once and
	// reports whether this call was the first. Drives the one-time
	// welcome message.
	MarkLoggedIn(ctx context.Context, userID string) (bool, error)
}

// IsAdministrator reports whether the session actor holds administrator
// privileges: either the bootstrap admin address or an admin role claim.
func IsAdministrator(actor *domain.User) bool {
	return actor.IsAdmin()
}

// MemoryStore is the redis-less Store used by tests and single-process
// development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memorySession
	loggedIn map[string]bool
}

type memorySession struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
		loggedIn: make(map[string]bool),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*domain.User, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return decodeActor(entry.payload), nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID string, actor *domain.User) error {
	payload, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[sessionID] = memorySession{payload: payload, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) MarkLoggedIn(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn[userID] {
		return false, nil
	}
	s.loggedIn[userID] = true
	return true, nil
}

// Corrupt plants an undecodable payload under a session id. Test hook for
// the degrade-to-none contract.
func (s *MemoryStore) Corrupt(sessionID string) {
	s.mu.Lock()
	s.sessions[sessionID] = memorySession{payload: []byte("{not json"), expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}

// decodeActor turns a stored payload back into an actor; undecodable
// payloads degrade to nil.
func decodeActor(payload []byte) *domain.User {
	var actor domain.User
	if err := json.Unmarshal(payload, &actor); err != nil {
		return nil
	}
	if actor.ID == "" {
		return nil
	}
	return &actor
}
