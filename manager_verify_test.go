package authclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/workscout/authclient/transport"
)

func TestStartWithoutTokenResolvesWithoutNetwork(t *testing.T) {
	backend := newFakeBackend(t)
	manager := newTestManager(t, backend, NewMemoryStore(), nil)

	snap, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", snap.State)
	}
	if snap.Loading || snap.Verifying {
		t.Fatal("expected neither loading nor verifying after no-token start")
	}
	if got := backend.totalHits(); got != 0 {
		t.Fatalf("expected zero network calls, got %d", got)
	}
	if manager.MetricsSnapshot().Counters[MetricVerifySkippedNoToken] != 1 {
		t.Fatal("expected no-token short-circuit counted")
	}
}

func TestStartWithTokenVerifiesAndSeedsCachedUser(t *testing.T) {
	backend := newFakeBackend(t)
	store := NewMemoryStore()
	saveCredential(t, store)
	manager := newTestManager(t, backend, store, nil)

	snap, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap.State != StateAuthenticated {
		t.Fatalf("expected authenticated, got %v", snap.State)
	}
	if snap.Loading {
		t.Fatal("expected loading cleared after start")
	}
	if snap.User == nil || snap.User.ID != testUser.ID {
		t.Fatalf("expected confirmed user, got %+v", snap.User)
	}
	if backend.hits("/auth/status") != 1 || backend.hits("/me") != 1 {
		t.Fatalf("expected one status + one profile call, got %d/%d",
			backend.hits("/auth/status"), backend.hits("/me"))
	}
}

func TestVerifyAuthWithoutTokenShortCircuits(t *testing.T) {
	backend := newFakeBackend(t)
	manager := newTestManager(t, backend, NewMemoryStore(), nil)

	snap, err := manager.VerifyAuth(context.Background(), true)
	if err != nil {
		t.Fatalf("VerifyAuth: %v", err)
	}
	if snap.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", snap.State)
	}
	if got := backend.totalHits(); got != 0 {
		t.Fatalf("expected zero network calls, got %d", got)
	}
}

func TestVerifyAuthStatusRejectionTearsDown(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setStatusAuthed(false)
	store := NewMemoryStore()
	saveCredential(t, store)
	manager := newTestManager(t, backend, store, nil)

	snap, err := manager.VerifyAuth(context.Background(), true)
	if !errors.Is(err, ErrSessionRejected) {
		t.Fatalf("expected ErrSessionRejected, got %v", err)
	}
	if snap.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", snap.State)
	}
	if _, has := store.Token(); has {
		t.Fatal("expected store cleared after rejected session")
	}
	if backend.hits("/me") != 0 {
		t.Fatal("expected profile call skipped after status rejection")
	}
}

func TestVerifyAuthBrokenProfileTearsDown(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setProfileBroken(true)
	store := NewMemoryStore()
	saveCredential(t, store)
	manager := newTestManager(t, backend, store, nil)

	_, err := manager.VerifyAuth(context.Background(), true)
	if !errors.Is(err, ErrProfileUnavailable) {
		t.Fatalf("expected ErrProfileUnavailable, got %v", err)
	}
	if manager.State() != StateUnauthenticated {
		t.Fatal("expected unauthenticated after profile failure")
	}
	if _, has := store.Token(); has {
		t.Fatal("expected store cleared when profile cannot be loaded")
	}
}

func TestVerifyAuthProfileGoneEndsUnauthenticated(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setProfileMissing(true)
	store := NewMemoryStore()
	saveCredential(t, store)
	manager := newTestManager(t, backend, store, nil)

	// The status endpoint still accepts the token; the account behind it is
	// gone. The 404 must end the session exactly like an explicit rejection.
	snap, err := manager.VerifyAuth(context.Background(), true)
	apiErr, ok := transport.AsAPIError(err)
	if !ok || apiErr.Status != 404 || apiErr.Kind != transport.KindHTTP {
		t.Fatalf("expected 404 KindHTTP error, got %v", err)
	}
	if snap.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", snap.State)
	}
	if snap.User != nil {
		t.Fatal("expected no user after missing profile")
	}
	if _, has := store.Token(); has {
		t.Fatal("expected store cleared when the profile is gone")
	}
	if _, ok := store.CachedUser(); ok {
		t.Fatal("expected cached user cleared when the profile is gone")
	}
	if backend.hits("/auth/status") != 1 || backend.hits("/me") != 1 {
		t.Fatalf("expected single status and profile attempt, got %d/%d",
			backend.hits("/auth/status"), backend.hits("/me"))
	}
}

func TestVerifyAuthTransitionsThroughVerifying(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setStatusDelay(30 * time.Millisecond)
	store := NewMemoryStore()
	saveCredential(t, store)
	manager := newTestManager(t, backend, store, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = manager.VerifyAuth(context.Background(), true)
	}()

	deadline := time.Now().Add(time.Second)
	sawVerifying := false
	for time.Now().Before(deadline) {
		if manager.State() == StateVerifying {
			sawVerifying = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	<-done

	if !sawVerifying {
		t.Fatal("expected the verifying state to be observable mid-flight")
	}
	if manager.State() != StateAuthenticated {
		t.Fatalf("expected authenticated after verification, got %v", manager.State())
	}
}

func TestConcurrentVerifyAuthSharesOneFlight(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setStatusDelay(50 * time.Millisecond)
	store := NewMemoryStore()
	saveCredential(t, store)
	manager := newTestManager(t, backend, store, nil)

	const callers = 8
	var wg sync.WaitGroup
	snaps := make([]Snapshot, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], errs[i] = manager.VerifyAuth(context.Background(), true)
		}(i)
	}
	wg.Wait()

	if backend.hits("/auth/status") != 1 || backend.hits("/me") != 1 {
		t.Fatalf("expected one shared round trip pair, got %d/%d",
			backend.hits("/auth/status"), backend.hits("/me"))
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if snaps[i].State != StateAuthenticated {
			t.Fatalf("caller %d: expected authenticated, got %v", i, snaps[i].State)
		}
	}
}

func TestVerifyAuthRedirectsOffProtectedRouteUnlessSilent(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setStatusAuthed(false)
	store := NewMemoryStore()
	saveCredential(t, store)

	nav := newTestNavigator()
	manager := newTestManager(t, backend, store, func(b *Builder) {
		b.WithNavigator(nav)
	})

	ctx := WithRoute(context.Background(), "/dashboard")
	if _, err := manager.VerifyAuth(ctx, false); err == nil {
		t.Fatal("expected verification failure")
	}

	select {
	case <-nav.fired:
	case <-time.After(time.Second):
		t.Fatal("expected navigation home after loud failure on protected route")
	}
	if got := nav.visited(); got[0] != "/" {
		t.Fatalf("expected navigation to /, got %v", got)
	}
}

func TestVerifyAuthSilentFailureSkipsRedirect(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setStatusAuthed(false)
	store := NewMemoryStore()
	saveCredential(t, store)

	nav := newTestNavigator()
	manager := newTestManager(t, backend, store, func(b *Builder) {
		b.WithNavigator(nav)
	})

	ctx := WithRoute(context.Background(), "/dashboard")
	if _, err := manager.VerifyAuth(ctx, true); err == nil {
		t.Fatal("expected verification failure")
	}

	select {
	case <-nav.fired:
		t.Fatal("expected no navigation on silent failure")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestVerifyAuthPublicRouteNeverRedirects(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setStatusAuthed(false)
	store := NewMemoryStore()
	saveCredential(t, store)

	nav := newTestNavigator()
	manager := newTestManager(t, backend, store, func(b *Builder) {
		b.WithNavigator(nav)
	})

	ctx := WithRoute(context.Background(), "/about")
	if _, err := manager.VerifyAuth(ctx, false); err == nil {
		t.Fatal("expected verification failure")
	}

	select {
	case <-nav.fired:
		t.Fatal("expected no navigation from a public route")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLocalExpiryCheckTearsDownWithoutNetwork(t *testing.T) {
	backend := newFakeBackend(t)
	store := NewMemoryStore()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	raw, err := expired.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := store.Save(raw, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	manager := newTestManager(t, backend, store, func(b *Builder) {
		cfg := DefaultConfig()
		cfg.Transport.BaseURL = backend.server.URL
		cfg.Session.LocalExpiryCheck = true
		b.WithConfig(cfg)
	})

	_, verr := manager.VerifyAuth(context.Background(), true)
	if !errors.Is(verr, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", verr)
	}
	if got := backend.totalHits(); got != 0 {
		t.Fatalf("expected zero network calls for locally expired token, got %d", got)
	}
	if _, has := store.Token(); has {
		t.Fatal("expected expired credential cleared")
	}
}
