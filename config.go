package authclient

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authclient APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Transport TransportConfig
	Session   SessionConfig
	Routes    RouteConfig
	Events    EventConfig
	Metrics   MetricsConfig
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig defines a public type used by authclient APIs.
//
// TransportConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TransportConfig struct {
	BaseURL        string // explicit override; always wins when set
	BaseURLEnvKey  string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	CacheBusting   bool
	AuthPaths      []string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by authclient APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// LocalExpiryCheck tears the session down without a round trip when the
	// bearer token is a JWT whose exp claim has already passed. Opaque tokens
	// are never judged locally.
	LocalExpiryCheck bool
}

/*
====================================
ROUTE CONFIG
====================================
*/

// RouteConfig defines a public type used by authclient APIs.
//
// RouteConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RouteConfig struct {
	Home        string
	PublicPaths []string
}

/*
====================================
EVENT CONFIG
====================================
*/

// EventConfig defines a public type used by authclient APIs.
//
// EventConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authclient APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Transport: TransportConfig{
			RequestTimeout: 15 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: time.Second,
			CacheBusting:   true,
			AuthPaths: []string{
				"/auth/login",
				"/auth/register",
				"/auth/status",
				"/auth/forgot-password",
				"/auth/reset-password",
			},
		},
		Session: SessionConfig{
			LocalExpiryCheck: false,
		},
		Routes: RouteConfig{
			Home: "/",
			PublicPaths: []string{
				"/",
				"/about",
				"/contact",
				"/privacy",
				"/terms",
				"/login",
				"/register",
				"/forgot-password",
				"/reset-password",
			},
		},
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Transport.RequestTimeout <= 0 {
		return errors.New("Transport RequestTimeout must be positive")
	}
	if c.Transport.MaxRetries < 0 || c.Transport.MaxRetries > 10 {
		return errors.New("Transport MaxRetries must be between 0 and 10")
	}
	if c.Transport.RetryBaseDelay <= 0 {
		return errors.New("Transport RetryBaseDelay must be positive")
	}
	for _, p := range c.Transport.AuthPaths {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Transport AuthPaths entries must start with /")
		}
	}
	if !strings.HasPrefix(c.Routes.Home, "/") {
		return errors.New("Routes Home must start with /")
	}
	for _, p := range c.Routes.PublicPaths {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Routes PublicPaths entries must start with /")
		}
	}
	if c.Events.Enabled && c.Events.BufferSize < 0 {
		return errors.New("Events BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Transport.AuthPaths = append([]string(nil), cfg.Transport.AuthPaths...)
	out.Routes.PublicPaths = append([]string(nil), cfg.Routes.PublicPaths...)
	return out
}
