package client

import (
	"time"

	"plafondhub/internal/core/domain"
	"plafondhub/internal/pkg/jwt"
)

// Session answers authentication questions from the credential store alone,
// without network calls. Freshness comes from the token's own exp claim.
type Session struct {
	store CredentialStore

	// now is swappable for tests
	now func() time.Time
}

// NewSession creates a session view over a credential store
func NewSession(store CredentialStore) *Session {
	return &Session{store: store, now: time.Now}
}

// IsAuthenticated reports whether a token is present and not yet expired.
// A malformed token counts as absent.
func (s *Session) IsAuthenticated() bool {
	token, ok := s.store.Token()
	if !ok || token == "" {
		return false
	}
	exp, ok := jwt.ExpiryUnix(token)
	if !ok {
		return false
	}
	return s.now().Unix() < exp
}

// Identity returns the stored identity when a live session exists
func (s *Session) Identity() (Identity, bool) {
	if !s.IsAuthenticated() {
		return Identity{}, false
	}
	return s.store.Identity()
}

// Roles returns the current roles, empty when logged out or expired
func (s *Session) Roles() domain.RoleSet {
	identity, ok := s.Identity()
	if !ok {
		return nil
	}
	return identity.RoleSet()
}

// HasRole reports whether the live session carries the role
func (s *Session) HasRole(role domain.Role) bool {
	return s.Roles().Contains(role)
}

// Logout clears the stored credentials. Safe to call repeatedly; logging out
// twice is a no-op, not an error.
func (s *Session) Logout() {
	s.store.Clear()
}
