package client

import (
	"sync"

	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

// Session is the display client's explicit identity context. It starts
// empty, is filled by a successful login and cleared by logout.
type Session struct {
	mu       sync.RWMutex
	token    string
	identity model.Identity
}

func (s *Session) set(token string, identity model.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = identity
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = model.Identity{}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the logged-in principal, if any.
func (s *Session) Identity() (model.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.token != ""
}
