package authclient

import (
	"context"
	"time"

	"github.com/workscout/authclient/transport"
)

// State represents the session manager's tri-state. There is no persisted
// "invalid" state; every failure path resolves to [StateUnauthenticated].
type State uint8

const (
	// StateUnauthenticated is an exported constant or variable used by the session manager.
	StateUnauthenticated State = iota
	// StateVerifying is an exported constant or variable used by the session manager.
	StateVerifying
	// StateAuthenticated is an exported constant or variable used by the session manager.
	StateAuthenticated
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// UserProfile is the last server-confirmed profile. It is replaced wholesale
// on every successful verification and never partially merged.
type UserProfile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Headline  string    `json:"headline,omitempty"`
	Location  string    `json:"location,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Snapshot is a point-in-time copy of the session state. Authenticated is
// true only after both the status and the profile endpoints confirmed the
// token; Loading is true only during the initial [Manager.Start] check, so
// background re-verifications never re-trigger full-page loading UI.
type Snapshot struct {
	State         State
	Authenticated bool
	Verifying     bool
	Loading       bool
	User          *UserProfile
}

// CredentialStore persists the bearer token together with a cached user
// snapshot. Save writes both entries together; Clear removes both in the same
// call and must be idempotent. Implementations perform no validation and no
// network access beyond their own backing storage.
type CredentialStore interface {
	Token() (string, bool)
	Save(token string, user *UserProfile) error
	Clear() error
	CachedUser() (*UserProfile, bool)
}

// StoreEvent is a change notification observed on a shared credential store.
type StoreEvent struct {
	Removed bool
	At      time.Time
}

// StoreWatcher is implemented by credential stores that can observe mutations
// made by other processes sharing the same backing storage.
type StoreWatcher interface {
	Watch(ctx context.Context) (<-chan StoreEvent, error)
}

// Navigator is re-exported from the transport package so callers wire a
// single implementation into both layers.
type Navigator = transport.Navigator

// NoOpNavigator is a Navigator that ignores all navigations.
type NoOpNavigator = transport.NoOpNavigator

// AuthResult is the normalized outcome of Login and Register. On failure,
// Message carries a human-readable reason suitable for display.
type AuthResult struct {
	Success bool
	Message string
	User    *UserProfile
}

// RegisterInput is the input for [Manager.Register].
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionGrant is the envelope returned by the login and register endpoints:
// {success, data: {token, ...userFields}}.
type sessionGrant struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		Token string `json:"token"`
		UserProfile
	} `json:"data"`
}

type statusEnvelope struct {
	Authenticated bool         `json:"authenticated"`
	User          *UserProfile `json:"user,omitempty"`
}

type profileEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *UserProfile `json:"data"`
}

type basicEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
