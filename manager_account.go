package authclient

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/workscout/authclient/transport"
)

// Login exchanges credentials for a session. On success the token and user
// are persisted atomically, the snapshot flips to [StateAuthenticated] before
// Login returns, and a silent background verification reconciles against the
// backend afterwards. On an invalid-credential response the session state is
// left untouched and the server's message is surfaced in the result.
func (m *Manager) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	var grant sessionGrant
	err := m.client.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &grant)
	if err != nil {
		if result, ok := m.rejectedGrant(ctx, err, eventLoginFailure, MetricLoginFailure); ok {
			return result, nil
		}
		return AuthResult{}, err
	}
	if !grant.Success || grant.Data == nil || grant.Data.Token == "" {
		m.metrics.Inc(MetricLoginFailure)
		m.emit(ctx, SessionEvent{
			EventType: eventLoginFailure,
			Route:     routeFromContext(ctx),
			Error:     grant.Message,
		})
		return AuthResult{Message: failureMessage(grant.Message)}, nil
	}

	user := grant.Data.UserProfile
	m.adoptSession(ctx, grant.Data.Token, &user, eventLoginSuccess, MetricLoginSuccess)

	return AuthResult{Success: true, Message: grant.Message, User: &user}, nil
}

// Register creates an account and, like Login, adopts the granted session
// synchronously before returning.
func (m *Manager) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)
	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	var grant sessionGrant
	err := m.client.Post(ctx, "/auth/register", input, &grant)
	if err != nil {
		if result, ok := m.rejectedGrant(ctx, err, eventRegisterFailure, MetricRegisterFailure); ok {
			return result, nil
		}
		return AuthResult{}, err
	}
	if !grant.Success || grant.Data == nil || grant.Data.Token == "" {
		m.metrics.Inc(MetricRegisterFailure)
		m.emit(ctx, SessionEvent{
			EventType: eventRegisterFailure,
			Route:     routeFromContext(ctx),
			Error:     grant.Message,
		})
		return AuthResult{Message: failureMessage(grant.Message)}, nil
	}

	user := grant.Data.UserProfile
	m.adoptSession(ctx, grant.Data.Token, &user, eventRegisterSuccess, MetricRegisterSuccess)

	return AuthResult{Success: true, Message: grant.Message, User: &user}, nil
}

// adoptSession persists the granted credential, flips the in-memory state
// synchronously, and schedules the silent reconciliation check.
func (m *Manager) adoptSession(ctx context.Context, token string, user *UserProfile, eventType string, metric MetricID) {
	if err := m.store.Save(token, user); err != nil {
		log.Print("authclient: credential save failed after session grant")
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	copied := *user
	m.user = &copied
	m.mu.Unlock()

	m.metrics.Inc(metric)
	m.emit(ctx, SessionEvent{
		EventType: eventType,
		Route:     routeFromContext(ctx),
		UserID:    user.ID,
		Success:   true,
	})

	verifyCtx := context.WithoutCancel(ctx)
	go func() {
		_, _ = m.VerifyAuth(verifyCtx, true)
	}()
}

// rejectedGrant converts a 401 or 422 from the auth endpoints into a failed
// [AuthResult] instead of an error: rejected credentials are an expected
// outcome, not a transport fault, and must not disturb the current session.
func (m *Manager) rejectedGrant(ctx context.Context, err error, eventType string, metric MetricID) (AuthResult, bool) {
	apiErr, ok := transport.AsAPIError(err)
	if !ok {
		return AuthResult{}, false
	}
	if apiErr.Kind != transport.KindAuth && apiErr.Kind != transport.KindValidation {
		return AuthResult{}, false
	}

	m.metrics.Inc(metric)
	m.emit(ctx, SessionEvent{
		EventType: eventType,
		Route:     routeFromContext(ctx),
		RequestID: apiErr.RequestID,
		Error:     apiErr.Message,
	})

	return AuthResult{Message: failureMessage(apiErr.Message)}, true
}

func failureMessage(message string) string {
	if message == "" {
		return ErrInvalidCredentials.Error()
	}
	return message
}

// Logout tears the session down unconditionally. It never contacts the
// backend and never fails from the caller's perspective; the navigation home
// follows the same deferred pattern as the transport's auth-failure path.
func (m *Manager) Logout(ctx context.Context) {
	m.metrics.Inc(MetricLogout)
	m.teardown(ctx, SessionEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventLogout,
		Route:     routeFromContext(ctx),
		Success:   true,
	}, true)

	nav := m.nav
	home := m.cfg.Routes.Home
	go nav.Navigate(home)
}

// ForgotPassword asks the backend to start a password reset flow for email.
// The server response is deliberately uniform whether or not the account
// exists; only transport failures surface as errors.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidInput
	}

	var resp basicEnvelope
	if err := m.client.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, &resp); err != nil {
		return err
	}

	m.metrics.Inc(MetricPasswordResetRequest)
	m.emit(ctx, SessionEvent{
		EventType: eventPasswordResetRequested,
		Route:     routeFromContext(ctx),
		Success:   resp.Success,
	})
	return nil
}

// ResetPassword completes a password reset with the emailed token.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) (AuthResult, error) {
	if token == "" || newPassword == "" {
		return AuthResult{}, ErrInvalidInput
	}

	var resp basicEnvelope
	err := m.client.Post(ctx, "/auth/reset-password", map[string]string{
		"token":    token,
		"password": newPassword,
	}, &resp)
	if err != nil {
		if apiErr, ok := transport.AsAPIError(err); ok &&
			(apiErr.Kind == transport.KindAuth || apiErr.Kind == transport.KindValidation) {
			return AuthResult{Message: failureMessage(apiErr.Message)}, nil
		}
		return AuthResult{}, err
	}

	m.metrics.Inc(MetricPasswordResetConfirm)
	m.emit(ctx, SessionEvent{
		EventType: eventPasswordResetConfirmed,
		Route:     routeFromContext(ctx),
		Success:   resp.Success,
	})

	return AuthResult{Success: resp.Success, Message: resp.Message}, nil
}
