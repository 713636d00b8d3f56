package authclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/workscout/authclient/transport"
)

// Builder defines a public type used by authclient APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	store  CredentialStore

	resolver   transport.BaseURLResolver
	navigator  Navigator
	httpClient *http.Client
	eventSink  EventSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore may return an error when input validation, dependency calls, or security checks fail.
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithBaseURLResolver describes the withbaseurlresolver operation and its observable behavior.
//
// WithBaseURLResolver may return an error when input validation, dependency calls, or security checks fail.
// WithBaseURLResolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBaseURLResolver(resolve transport.BaseURLResolver) *Builder {
	b.resolver = resolve
	return b
}

// WithNavigator describes the withnavigator operation and its observable behavior.
//
// WithNavigator may return an error when input validation, dependency calls, or security checks fail.
// WithNavigator does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
//
// WithEventSink may return an error when input validation, dependency calls, or security checks fail.
// WithEventSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- BASE URL RESOLUTION --------
	resolve := b.resolver
	switch {
	case resolve != nil:
		// An explicit BaseURL still wins over an injected resolver.
		if cfg.Transport.BaseURL != "" {
			resolve = transport.Override(cfg.Transport.BaseURL, resolve)
		}
	case cfg.Transport.BaseURL != "":
		resolve = transport.StaticBaseURL(cfg.Transport.BaseURL)
	case cfg.Transport.BaseURLEnvKey != "":
		resolve = transport.BaseURLFromEnv(cfg.Transport.BaseURLEnvKey)
	default:
		return nil, errors.New("base URL resolver required")
	}

	navigator := b.navigator
	if navigator == nil {
		navigator = NoOpNavigator{}
	}

	manager := &Manager{
		cfg:     cfg,
		store:   b.store,
		nav:     navigator,
		events:  newEventDispatcher(cfg.Events, b.eventSink),
		metrics: NewMetrics(cfg.Metrics),
		state:   StateUnauthenticated,
	}

	// -------- TRANSPORT --------
	// PublicPaths is handed to the transport as-is so the redirect policy on
	// both layers consults the same list.
	client, err := transport.NewClient(transport.Config{
		Resolve:        resolve,
		Credentials:    b.store,
		Navigator:      navigator,
		HTTPClient:     b.httpClient,
		RequestTimeout: cfg.Transport.RequestTimeout,
		MaxRetries:     cfg.Transport.MaxRetries,
		RetryBaseDelay: cfg.Transport.RetryBaseDelay,
		CacheBusting:   cfg.Transport.CacheBusting,
		AuthPaths:      cfg.Transport.AuthPaths,
		PublicPaths:    cfg.Routes.PublicPaths,
		HomePath:       cfg.Routes.Home,
	})
	if err != nil {
		return nil, err
	}

	client.OnAuthFailure(manager.handleAuthFailure)
	client.OnRetry(func(ctx context.Context, info transport.RetryInfo) {
		manager.metrics.Inc(MetricRequestRetry)
		manager.emit(ctx, SessionEvent{
			EventType: eventRequestRetry,
			Route:     routeFromContext(ctx),
			RequestID: info.RequestID,
			Metadata: map[string]string{
				"method": info.Method,
				"path":   info.Path,
			},
		})
	})
	client.OnFailure(func(ctx context.Context, apiErr *transport.APIError) {
		switch apiErr.Kind {
		case transport.KindNetwork:
			manager.metrics.Inc(MetricRequestNetworkError)
		case transport.KindAuth:
			manager.metrics.Inc(MetricRequestAuthError)
		case transport.KindValidation:
			manager.metrics.Inc(MetricRequestValidationError)
		default:
			manager.metrics.Inc(MetricRequestHTTPError)
		}
	})

	manager.client = client

	// -------- CROSS-CONTEXT WATCH --------
	if watcher, ok := b.store.(StoreWatcher); ok {
		watchCtx, cancel := context.WithCancel(context.Background())
		events, err := watcher.Watch(watchCtx)
		if err != nil {
			cancel()
			manager.events.Close()
			return nil, err
		}
		manager.watchCancel = cancel
		manager.watchDone = make(chan struct{})
		go manager.runWatch(watchCtx, events)
	}

	b.built = true

	return manager, nil
}
