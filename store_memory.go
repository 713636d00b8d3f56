package authclient

import "sync"

// MemoryStore is an in-process [CredentialStore] for tests and short-lived
// tools. It never notifies other contexts; cross-context sync requires a
// shared store such as [RedisStore].
type MemoryStore struct {
	mu       sync.Mutex
	token    string
	hasToken bool
	user     *UserProfile
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Token describes the token operation and its observable behavior.
//
// Token does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.hasToken
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Save(token string, user *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.hasToken = true
	if user != nil {
		copied := *user
		s.user = &copied
	} else {
		s.user = nil
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.hasToken = false
	s.user = nil
	return nil
}

// CachedUser describes the cacheduser operation and its observable behavior.
//
// CachedUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) CachedUser() (*UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, false
	}
	copied := *s.user
	return &copied, true
}
