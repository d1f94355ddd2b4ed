// Package session holds the "current user" as an explicit object handed to
// the services that need it, instead of ambient shared state.
//
// A Session starts empty. Init is called once the caller's identity is
// resolved (for the HTTP API: after the bearer token has been verified) and
// Reset on sign-out. Services read it on every call, so a reset session makes
// them behave as for an anonymous caller.
package session

import (
	"sync"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

type Session struct {
	mu        sync.RWMutex
	profile   *domain.Profile
	tokenID   string
	expiresAt time.Time
}

// New returns an anonymous session.
func New() *Session {
	return &Session{}
}

// For returns a session already initialised with profile.
func For(profile *domain.Profile) *Session {
	s := New()
	s.Init(profile, "", time.Time{})
	return s
}

// Init binds the session to a resolved identity.
func (s *Session) Init(profile *domain.Profile, tokenID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile != nil {
		clone := *profile
		profile = &clone
	}
	s.profile = profile
	s.tokenID = tokenID
	s.expiresAt = expiresAt
}

// Reset drops the identity; the session becomes anonymous.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.tokenID = ""
	s.expiresAt = time.Time{}
}

// User returns a copy of the current profile, or nil for an anonymous session.
func (s *Session) User() *domain.Profile {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	clone := *s.profile
	return &clone
}

func (s *Session) Authenticated() bool {
	return s.User() != nil
}

func (s *Session) IsAdmin() bool {
	return s.User().IsAdmin()
}

// Token returns the id and expiry of the token the session was resolved from.
func (s *Session) Token() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenID, s.expiresAt
}
