package auth

import (
	"context"
	"sync"

	"mangrovewatch/backend/api"
	"mangrovewatch/backend/store"

	"github.com/apex/log"
)

// Session holds the authenticated user and mirrors it to the store under
// store.KeyUser. It is safe for concurrent use.
type Session struct {
	store store.Store

	mu   sync.RWMutex
	user *api.User
}

func NewSession(s store.Store) *Session {
	return &Session{store: s}
}

// Restore loads the persisted user, if any. Missing, malformed, unreadable
// and nameless records leave the session logged out.
func (s *Session) Restore(ctx context.Context) {
	var u api.User
	found, err := store.GetJSON(ctx, s.store, store.KeyUser, &u)
	if err != nil {
		log.Errorf("Failed to restore session: %v", err)
		return
	}

	if found && u.Username == "" {
		log.Warn("Ignoring stored session without a username")
		found = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !found {
		s.user = nil
		return
	}
	s.user = &u
	log.WithField("username", u.Username).Debug("Session restored")
}

// Login accepts u unconditionally. A failure to persist is logged and the
// in-memory session stays authenticated.
func (s *Session) Login(ctx context.Context, u api.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	if err := store.SetJSON(ctx, s.store, store.KeyUser, u); err != nil {
		log.Errorf("Failed to persist session for %q: %v", u.Username, err)
	}
}

func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Remove(ctx, store.KeyUser); err != nil {
		log.Errorf("Failed to remove persisted session: %v", err)
	}
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the current user.
func (s *Session) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}
