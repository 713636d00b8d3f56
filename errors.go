package authclient

import "errors"

var (
	// ErrManagerNotReady is an exported constant or variable used by the session manager.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrInvalidInput is an exported constant or variable used by the session manager.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is an exported constant or variable used by the session manager.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionRejected is an exported constant or variable used by the session manager.
	ErrSessionRejected = errors.New("session rejected by server")
	// ErrProfileUnavailable is an exported constant or variable used by the session manager.
	ErrProfileUnavailable = errors.New("user profile unavailable")
	// ErrSessionExpired is an exported constant or variable used by the session manager.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalidated is an exported constant or variable used by the session manager.
	ErrSessionInvalidated = errors.New("session invalidated")
	// ErrStoreUnavailable is an exported constant or variable used by the session manager.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrWatchUnavailable is an exported constant or variable used by the session manager.
	ErrWatchUnavailable = errors.New("credential store watch unavailable")
)
