package authclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const testToken = "tok-test-1"

var testUser = UserProfile{
	ID:       "user-1",
	FullName: "Alice Example",
	Email:    "alice@example.com",
	Headline: "Backend Engineer",
}

// fakeBackend is a scriptable stand-in for the jobs API. Every handler counts
// its hits so tests can assert exactly how many round trips an operation cost.
type fakeBackend struct {
	server *httptest.Server

	mu             sync.Mutex
	counts         map[string]int
	statusAuthed   bool
	profileBroken  bool
	profileMissing bool
	loginRejected  bool
	statusDelay    time.Duration
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		counts:       make(map[string]int),
		statusAuthed: true,
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.counts[r.URL.Path]++
	statusAuthed := b.statusAuthed
	profileBroken := b.profileBroken
	profileMissing := b.profileMissing
	loginRejected := b.loginRejected
	delay := b.statusDelay
	b.mu.Unlock()

	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	switch r.URL.Path {
	case "/auth/login", "/auth/register":
		if loginRejected {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "email or password is incorrect",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "welcome back",
			"data": map[string]any{
				"token":    testToken,
				"id":       testUser.ID,
				"fullName": testUser.FullName,
				"email":    testUser.Email,
				"headline": testUser.Headline,
			},
		})
	case "/auth/status":
		if delay > 0 {
			time.Sleep(delay)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": statusAuthed && bearer == testToken,
		})
	case "/me":
		if bearer != testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
			return
		}
		if profileMissing {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "account no longer exists"})
			return
		}
		if profileBroken {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "profile unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"id":       testUser.ID,
				"fullName": testUser.FullName,
				"email":    testUser.Email,
				"headline": testUser.Headline,
			},
		})
	case "/jobs/saved":
		if bearer != testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *fakeBackend) hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[path]
}

func (b *fakeBackend) totalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.counts {
		total += n
	}
	return total
}

func (b *fakeBackend) setStatusAuthed(v bool) {
	b.mu.Lock()
	b.statusAuthed = v
	b.mu.Unlock()
}

func (b *fakeBackend) setProfileBroken(v bool) {
	b.mu.Lock()
	b.profileBroken = v
	b.mu.Unlock()
}

func (b *fakeBackend) setProfileMissing(v bool) {
	b.mu.Lock()
	b.profileMissing = v
	b.mu.Unlock()
}

func (b *fakeBackend) setLoginRejected(v bool) {
	b.mu.Lock()
	b.loginRejected = v
	b.mu.Unlock()
}

func (b *fakeBackend) setStatusDelay(d time.Duration) {
	b.mu.Lock()
	b.statusDelay = d
	b.mu.Unlock()
}

// waitForHits polls until path has received at least n requests. Used to join
// background verifications without sleeping a fixed amount.
func (b *fakeBackend) waitForHits(t *testing.T, path string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.hits(path) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d hits on %s, got %d", n, path, b.hits(path))
}

type testNavigator struct {
	mu     sync.Mutex
	routes []string
	fired  chan struct{}
}

func newTestNavigator() *testNavigator {
	return &testNavigator{fired: make(chan struct{}, 8)}
}

func (n *testNavigator) Navigate(route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
	n.fired <- struct{}{}
}

func (n *testNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

func newTestManager(t *testing.T, backend *fakeBackend, store CredentialStore, mutate func(*Builder)) *Manager {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Transport.BaseURL = backend.server.URL
	cfg.Transport.RetryBaseDelay = time.Millisecond

	builder := New().WithConfig(cfg).WithStore(store)
	if mutate != nil {
		mutate(builder)
	}

	manager, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(manager.Close)
	return manager
}

func saveCredential(t *testing.T, store CredentialStore) {
	t.Helper()
	user := testUser
	if err := store.Save(testToken, &user); err != nil {
		t.Fatalf("Save: %v", err)
	}
}
