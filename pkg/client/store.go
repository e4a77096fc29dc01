package client

import "sync"

// CredentialStore holds the access token and the identity saved with it.
// Implementations must keep the pair consistent: Save and Clear replace both
// values together, never one of them.
type CredentialStore interface {
	Save(token string, identity Identity)
	Token() (string, bool)
	Identity() (Identity, bool)
	Clear()
}

// MemoryStore is the default in-memory CredentialStore. Portal hosts with a
// durable storage (browser, keychain) supply their own implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	token    string
	identity Identity
	present  bool
}

// NewMemoryStore creates an empty in-memory credential store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores the token and identity as one unit
func (s *MemoryStore) Save(token string, identity Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = identity
	s.present = true
}

// Token returns the stored token, if any
func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.present
}

// Identity returns the stored identity, if any
func (s *MemoryStore) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.present
}

// Clear removes the token and identity together
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = Identity{}
	s.present = false
}
