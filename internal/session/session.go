// Package session holds the authenticated identity for the process lifetime.
// Synchronization cores receive a Session at construction instead of reading
// hidden global state.
package session

import (
	"sync"

	"linkup/model"
)

type Session struct {
	mu       sync.RWMutex
	identity *model.Identity
}

func New() *Session {
	return &Session{}
}

// ForIdentity returns a session pre-populated with id.
func ForIdentity(id model.Identity) *Session {
	s := New()
	s.Set(id)
	return s
}

func (s *Session) Set(id model.Identity) {
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}

// Current returns the identity, or nil when no one is signed in.
func (s *Session) Current() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Session) Authenticated() bool {
	return s.Current() != nil
}

func (s *Session) UserID() string {
	if id := s.Current(); id != nil {
		return id.ID
	}
	return ""
}
