package authclient

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/workscout/authclient/transport"
)

// Manager owns the client-side session state machine. It verifies the stored
// credential against the backend, keeps a point-in-time [Snapshot] for UI
// consumers, and reacts to hard authentication failures raised by the
// transport and to credential mutations made by other processes sharing the
// same store.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	cfg     Config
	store   CredentialStore
	client  *transport.Client
	nav     Navigator
	events  *eventDispatcher
	metrics *Metrics

	mu        sync.Mutex
	storeMu   sync.Mutex
	state     State
	loading   bool
	user      *UserProfile
	inflight  *verifyCall
	listeners []func(SessionEvent)

	watchCancel context.CancelFunc
	watchDone   chan struct{}
	closeOnce   sync.Once
}

// verifyCall memoizes one in-flight verification. Callers that arrive while
// done is open block on it and receive the same snapshot and error as the
// caller that actually performed the round trips.
type verifyCall struct {
	done chan struct{}
	snap Snapshot
	err  error
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:         m.state,
		Authenticated: m.state == StateAuthenticated,
		Verifying:     m.state == StateVerifying,
		Loading:       m.loading,
	}
	if m.user != nil {
		copied := *m.user
		snap.User = &copied
	}
	return snap
}

// State describes the state operation and its observable behavior.
//
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser describes the currentuser operation and its observable behavior.
//
// CurrentUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) CurrentUser() (*UserProfile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, false
	}
	copied := *m.user
	return &copied, true
}

// Transport returns the resilient HTTP client so application code shares the
// same interceptor pipeline, retry policy, and auth-failure handling for its
// own API calls.
func (m *Manager) Transport() *transport.Client {
	return m.client
}

// OnSessionInvalidated registers a same-process observer invoked after the
// session has been torn down. The listener runs on the goroutine that
// detected the invalidation; it must not block.
func (m *Manager) OnSessionInvalidated(fn func(SessionEvent)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// handleAuthFailure is wired into the transport's OnAuthFailure hook. The
// transport has already cleared the credential store by the time this runs;
// the manager only has to reset in-memory state and fan the event out.
func (m *Manager) handleAuthFailure(ctx context.Context, apiErr *transport.APIError) {
	m.metrics.Inc(MetricAuthBroadcast)
	m.teardown(ctx, SessionEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventSessionInvalidated,
		Route:     routeFromContext(ctx),
		RequestID: apiErr.RequestID,
		Error:     apiErr.Message,
	}, false)
}

// teardown resets the session to unauthenticated and notifies observers.
// When clearStore is true the credential store is cleared as well; callers
// pass false when the store is already known to be empty.
func (m *Manager) teardown(ctx context.Context, event SessionEvent, clearStore bool) {
	if clearStore {
		// storeMu serializes the clear against the post-verify cache refresh;
		// without it a refresh could resurrect the token it read moments ago.
		m.storeMu.Lock()
		if err := m.store.Clear(); err != nil {
			log.Print("authclient: credential clear failed during session teardown")
		}
		m.storeMu.Unlock()
	}

	m.mu.Lock()
	m.state = StateUnauthenticated
	m.user = nil
	listeners := make([]func(SessionEvent), 0, len(m.listeners))
	listeners = append(listeners, m.listeners...)
	m.mu.Unlock()

	m.metrics.Inc(MetricSessionInvalidated)
	m.emit(ctx, event)
	for _, fn := range listeners {
		fn(event)
	}
}

func (m *Manager) emit(ctx context.Context, event SessionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	m.events.Emit(ctx, event)
}

// runWatch consumes store change notifications from other processes. A
// removal tears the local session down without any network traffic; a save by
// another process is ignored until the next verification touches the server.
func (m *Manager) runWatch(ctx context.Context, events <-chan StoreEvent) {
	defer close(m.watchDone)

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if !event.Removed {
				continue
			}
			m.metrics.Inc(MetricCrossContextInvalidated)
			m.teardown(ctx, SessionEvent{
				Timestamp: event.At,
				EventType: eventSessionInvalidated,
				Error:     ErrSessionInvalidated.Error(),
				Metadata:  map[string]string{"origin": "cross_context"},
			}, false)
		case <-ctx.Done():
			return
		}
	}
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// EventsDropped describes the eventsdropped operation and its observable behavior.
//
// EventsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) EventsDropped() uint64 {
	return m.events.Dropped()
}

// Close stops the store watcher and drains the event dispatcher. The manager
// must not be used after Close returns.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		if m.watchCancel != nil {
			m.watchCancel()
			<-m.watchDone
		}
		m.events.Close()
	})
}
