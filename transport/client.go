package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CredentialSource supplies the bearer credential attached to outbound
// requests. Clear is invoked on a hard authentication failure and must be
// idempotent.
type CredentialSource interface {
	Token() (string, bool)
	Clear() error
}

// Navigator performs a full navigation to an application route after a hard
// authentication failure outside the public allow-list.
type Navigator interface {
	Navigate(route string)
}

// NoOpNavigator is a Navigator that ignores all navigations.
type NoOpNavigator struct{}

// Navigate describes the navigate operation and its observable behavior.
//
// Navigate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpNavigator) Navigate(string) {}

// RequestInterceptor observes or mutates an outbound request after the built-in
// outbound stage and before execution.
type RequestInterceptor func(req *http.Request) error

// RetryInfo describes one scheduled retry of a logical request.
type RetryInfo struct {
	Method    string
	Path      string
	RequestID string
	Attempt   int
	Delay     time.Duration
	Status    int
}

// Config defines a public type used by transport APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Resolve        BaseURLResolver
	Credentials    CredentialSource
	Navigator      Navigator
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	CacheBusting   bool
	AuthPaths      []string
	PublicPaths    []string
	HomePath       string
}

// Client defines a public type used by transport APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	http          *http.Client
	resolve       BaseURLResolver
	creds         CredentialSource
	navigator     Navigator
	interceptors  []RequestInterceptor
	maxRetries    int
	baseDelay     time.Duration
	cacheBusting  bool
	authPaths     map[string]struct{}
	publicPaths   []string
	homePath      string
	onAuthFailure func(ctx context.Context, err *APIError)
	onRetry       func(ctx context.Context, info RetryInfo)
	onFailure     func(ctx context.Context, err *APIError)
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Resolve == nil {
		return nil, errNoBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient.Timeout = timeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	navigator := cfg.Navigator
	if navigator == nil {
		navigator = NoOpNavigator{}
	}

	homePath := cfg.HomePath
	if homePath == "" {
		homePath = "/"
	}

	authPaths := make(map[string]struct{}, len(cfg.AuthPaths))
	for _, p := range cfg.AuthPaths {
		authPaths[p] = struct{}{}
	}

	return &Client{
		http:         httpClient,
		resolve:      cfg.Resolve,
		creds:        cfg.Credentials,
		navigator:    navigator,
		maxRetries:   maxRetries,
		baseDelay:    baseDelay,
		cacheBusting: cfg.CacheBusting,
		authPaths:    authPaths,
		publicPaths:  cfg.PublicPaths,
		homePath:     homePath,
	}, nil
}

// Use appends a custom request interceptor. Interceptors run in registration
// order after the built-in outbound stage.
func (c *Client) Use(interceptor RequestInterceptor) {
	if interceptor == nil {
		return
	}
	c.interceptors = append(c.interceptors, interceptor)
}

// OnAuthFailure registers the handler invoked on a hard authentication
// failure, before any navigation. At most one handler is kept.
func (c *Client) OnAuthFailure(fn func(ctx context.Context, err *APIError)) {
	c.onAuthFailure = fn
}

// OnRetry registers an observer for scheduled retries.
func (c *Client) OnRetry(fn func(ctx context.Context, info RetryInfo)) {
	c.onRetry = fn
}

// OnFailure registers an observer for terminal classified errors.
func (c *Client) OnFailure(fn func(ctx context.Context, err *APIError)) {
	c.onFailure = fn
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post describes the post operation and its observable behavior.
//
// Post may return an error when input validation, dependency calls, or security checks fail.
// Post does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// request is the ephemeral per-call state. retryCount is shared across every
// attempt of the same logical call and is never reset.
type request struct {
	method     string
	path       string
	id         string
	retryCount int
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = encoded
	}

	req := &request{
		method: method,
		path:   path,
		id:     uuid.NewString(),
	}

	for {
		apiErr := c.attempt(ctx, req, payload, out)
		if apiErr == nil {
			return nil
		}

		if apiErr.Status == http.StatusUnauthorized {
			return c.handleUnauthorized(ctx, req, apiErr)
		}

		if !retryable(apiErr) || req.retryCount >= c.maxRetries {
			c.noteFailure(ctx, apiErr)
			return apiErr
		}

		req.retryCount++
		delay := backoffDelay(c.baseDelay, req.retryCount)
		if c.onRetry != nil {
			c.onRetry(ctx, RetryInfo{
				Method:    req.method,
				Path:      req.path,
				RequestID: req.id,
				Attempt:   req.retryCount,
				Delay:     delay,
				Status:    apiErr.Status,
			})
		}
		if err := sleepContext(ctx, delay); err != nil {
			return err
		}
	}
}

func (c *Client) attempt(ctx context.Context, req *request, payload []byte, out any) *APIError {
	base, err := c.resolve()
	if err != nil {
		return classifyNetwork(err, req.id)
	}

	target := base + req.path
	if req.method == http.MethodGet && c.cacheBusting {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "_ts=" + strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
	if err != nil {
		return classifyNetwork(err, req.id)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", req.id)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token, ok := c.creds.Token(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for _, interceptor := range c.interceptors {
		if err := interceptor(httpReq); err != nil {
			return classifyNetwork(err, req.id)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Timeouts surface here as url.Error and classify as Network.
		return classifyNetwork(err, req.id)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyNetwork(err, req.id)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return &APIError{
					Kind:      KindHTTP,
					Status:    resp.StatusCode,
					Message:   "malformed response body",
					RequestID: req.id,
					Timestamp: time.Now().UTC(),
				}
			}
		}
		return nil
	}

	var envelope struct {
		Success bool                `json:"success"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(data, &envelope)

	return classifyStatus(resp.StatusCode, envelope.Message, envelope.Errors, req.id)
}

func (c *Client) handleUnauthorized(ctx context.Context, req *request, apiErr *APIError) error {
	if _, ok := c.authPaths[req.path]; ok {
		// A 401 from the auth endpoints means invalid credentials, not a dead
		// session. Returning it unchanged guards against logout loops.
		c.noteFailure(ctx, apiErr)
		return apiErr
	}

	if c.creds != nil {
		if err := c.creds.Clear(); err != nil {
			log.Print("authclient: credential clear failed after auth failure")
		}
	}
	if c.onAuthFailure != nil {
		c.onAuthFailure(ctx, apiErr)
	}

	route := RouteFromContext(ctx)
	navigator := c.navigator
	home := c.homePath
	publicPaths := c.publicPaths
	// Navigation runs on its own goroutine so the caller observes the cleared
	// session state before the route changes.
	go func() {
		if IsPublicRoute(publicPaths, route) {
			return
		}
		navigator.Navigate(home)
	}()

	c.noteFailure(ctx, apiErr)
	return apiErr
}

func (c *Client) noteFailure(ctx context.Context, apiErr *APIError) {
	if c.onFailure != nil {
		c.onFailure(ctx, apiErr)
	}
}

// IsPublicRoute reports whether route is on the public allow-list. Both the
// transport and the session manager must consult the same list, so the
// matching rule lives here exactly once.
func IsPublicRoute(publicPaths []string, route string) bool {
	route = normalizeRoute(route)
	if route == "" {
		return false
	}
	for _, p := range publicPaths {
		if normalizeRoute(p) == route {
			return true
		}
	}
	return false
}

func normalizeRoute(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimSuffix(route, "/")
	}
	return route
}
