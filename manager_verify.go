package authclient

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/workscout/authclient/transport"
)

// Start performs the initial session check. With no stored credential it
// resolves to [StateUnauthenticated] synchronously and touches the network
// zero times. With a credential present it seeds the snapshot from the cached
// user, raises Loading for the duration of the check, and verifies against
// the backend before returning.
func (m *Manager) Start(ctx context.Context) (Snapshot, error) {
	if _, ok := m.store.Token(); !ok {
		m.metrics.Inc(MetricVerifySkippedNoToken)
		// Drop any cached user left behind so the token/user pair stays
		// consistent. Best-effort, and never a backend call.
		if err := m.store.Clear(); err != nil {
			log.Print("authclient: credential clear failed during no-token start")
		}
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.user = nil
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, nil
	}

	m.mu.Lock()
	m.loading = true
	if cached, ok := m.store.CachedUser(); ok {
		m.user = cached
	}
	m.mu.Unlock()

	snap, err := m.VerifyAuth(ctx, true)

	m.mu.Lock()
	m.loading = false
	snap = m.snapshotLocked()
	m.mu.Unlock()

	return snap, err
}

// VerifyAuth confirms the stored credential against the backend: first the
// status endpoint, then the profile endpoint. Authenticated is reached only
// when both succeed. Concurrent callers join the in-flight verification and
// receive its result instead of issuing duplicate round trips.
//
// silent suppresses the redirect-home on failure; background re-checks pass
// true so users on public routes are not yanked away.
func (m *Manager) VerifyAuth(ctx context.Context, silent bool) (Snapshot, error) {
	m.mu.Lock()
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.snap, call.err
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		}
	}

	token, ok := m.store.Token()
	if !ok {
		m.metrics.Inc(MetricVerifySkippedNoToken)
		m.state = StateUnauthenticated
		m.user = nil
		snap := m.snapshotLocked()
		m.mu.Unlock()
		if err := m.store.Clear(); err != nil {
			log.Print("authclient: credential clear failed during no-token verification")
		}
		return snap, nil
	}

	if m.cfg.Session.LocalExpiryCheck && tokenExpired(token, time.Now()) {
		m.mu.Unlock()
		m.metrics.Inc(MetricVerifyExpiredLocal)
		m.metrics.Inc(MetricVerifyFailure)
		m.teardown(ctx, SessionEvent{
			EventType: eventVerifyFailure,
			Route:     routeFromContext(ctx),
			Error:     ErrSessionExpired.Error(),
		}, true)
		return m.Snapshot(), ErrSessionExpired
	}

	call := &verifyCall{done: make(chan struct{})}
	m.inflight = call
	m.state = StateVerifying
	m.mu.Unlock()

	snap, err := m.verify(ctx, silent)

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()

	call.snap = snap
	call.err = err
	close(call.done)

	return snap, err
}

func (m *Manager) verify(ctx context.Context, silent bool) (Snapshot, error) {
	started := time.Now()

	var status statusEnvelope
	if err := m.client.Get(ctx, "/auth/status", &status); err != nil {
		// The status endpoint is on the auth allow-list, so a 401 here came
		// back unbroadcast; the teardown is ours to perform.
		return m.failVerify(ctx, silent, err, false)
	}
	if !status.Authenticated {
		return m.failVerify(ctx, silent, ErrSessionRejected, false)
	}

	var profile profileEnvelope
	if err := m.client.Get(ctx, "/me", &profile); err != nil {
		var apiErr *transport.APIError
		tornDown := errors.As(err, &apiErr) && apiErr.Kind == transport.KindAuth
		return m.failVerify(ctx, silent, err, tornDown)
	}
	if !profile.Success || profile.Data == nil {
		return m.failVerify(ctx, silent, ErrProfileUnavailable, false)
	}

	user := *profile.Data

	m.mu.Lock()
	m.state = StateAuthenticated
	m.user = &user
	snap := m.snapshotLocked()
	m.mu.Unlock()

	// Token re-read and save form one unit under storeMu so a concurrent
	// teardown cannot slip its clear between them.
	m.storeMu.Lock()
	if token, ok := m.store.Token(); ok {
		if err := m.store.Save(token, &user); err != nil {
			log.Print("authclient: cached user refresh failed after verification")
		}
	}
	m.storeMu.Unlock()

	m.metrics.Inc(MetricVerifySuccess)
	m.metrics.Observe(MetricVerifyLatency, time.Since(started))
	m.emit(ctx, SessionEvent{
		EventType: eventVerifySuccess,
		Route:     routeFromContext(ctx),
		UserID:    user.ID,
		Success:   true,
	})

	return snap, nil
}

// failVerify resolves a failed verification to the unauthenticated state.
// tornDown is true when the transport already broadcast the failure and
// cleared the store, in which case only the verify bookkeeping remains.
func (m *Manager) failVerify(ctx context.Context, silent bool, cause error, tornDown bool) (Snapshot, error) {
	m.metrics.Inc(MetricVerifyFailure)

	if tornDown {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.user = nil
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.emit(ctx, SessionEvent{
			EventType: eventVerifyFailure,
			Route:     routeFromContext(ctx),
			Error:     cause.Error(),
		})
		return snap, cause
	}

	m.teardown(ctx, SessionEvent{
		EventType: eventVerifyFailure,
		Route:     routeFromContext(ctx),
		Error:     cause.Error(),
	}, true)

	if !silent {
		route := routeFromContext(ctx)
		if !transport.IsPublicRoute(m.cfg.Routes.PublicPaths, route) {
			nav := m.nav
			home := m.cfg.Routes.Home
			// Same deferred navigation the transport uses: callers observe the
			// unauthenticated snapshot before the route changes.
			go nav.Navigate(home)
		}
	}

	return m.Snapshot(), cause
}

// OnRouteChange re-verifies the session in the background when the caller
// moves to a new route. It is a no-op without a stored credential.
func (m *Manager) OnRouteChange(ctx context.Context, route string) {
	if _, ok := m.store.Token(); !ok {
		return
	}
	verifyCtx := transport.WithRoute(context.WithoutCancel(ctx), route)
	go func() {
		_, _ = m.VerifyAuth(verifyCtx, true)
	}()
}
