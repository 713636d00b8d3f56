package authclient

import (
	"context"
	"log"
)

// UpdateUser replaces the cached profile wholesale after the caller has
// already persisted the change through its own API call. The session state
// is not re-derived; only the profile snapshot and the store's cached copy
// change, and the bearer token is kept as-is.
func (m *Manager) UpdateUser(ctx context.Context, user *UserProfile) error {
	if user == nil {
		return ErrInvalidInput
	}

	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return ErrManagerNotReady
	}
	copied := *user
	m.user = &copied
	m.mu.Unlock()

	if token, ok := m.store.Token(); ok {
		if err := m.store.Save(token, user); err != nil {
			log.Print("authclient: cached user update failed")
		}
	}

	m.metrics.Inc(MetricUserUpdated)
	m.emit(ctx, SessionEvent{
		EventType: eventUserUpdated,
		Route:     routeFromContext(ctx),
		UserID:    user.ID,
		Success:   true,
	})

	return nil
}

// CachedUser returns the store's persisted profile copy without touching the
// in-memory snapshot or the network.
func (m *Manager) CachedUser() (*UserProfile, bool) {
	return m.store.CachedUser()
}
