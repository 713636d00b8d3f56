package internaldefs

import (
	authclient "github.com/workscout/authclient"
)

// CounterDef defines a public type used by authclient APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authclient APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authclient.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: authclient.MetricLoginSuccess, Name: "authclient_login_success_total", Help: "Successful login attempts."},
	{ID: authclient.MetricLoginFailure, Name: "authclient_login_failure_total", Help: "Failed login attempts."},
	{ID: authclient.MetricRegisterSuccess, Name: "authclient_register_success_total", Help: "Successful registrations."},
	{ID: authclient.MetricRegisterFailure, Name: "authclient_register_failure_total", Help: "Failed registrations."},
	{ID: authclient.MetricVerifySuccess, Name: "authclient_verify_success_total", Help: "Successful session verifications."},
	{ID: authclient.MetricVerifyFailure, Name: "authclient_verify_failure_total", Help: "Failed session verifications."},
	{ID: authclient.MetricVerifySkippedNoToken, Name: "authclient_verify_skipped_no_token_total", Help: "Verifications short-circuited without a stored credential."},
	{ID: authclient.MetricVerifyExpiredLocal, Name: "authclient_verify_expired_local_total", Help: "Sessions torn down by the local token expiry check."},
	{ID: authclient.MetricLogout, Name: "authclient_logout_total", Help: "Logout operations."},
	{ID: authclient.MetricSessionInvalidated, Name: "authclient_session_invalidated_total", Help: "Session teardowns from any cause."},
	{ID: authclient.MetricAuthBroadcast, Name: "authclient_auth_broadcast_total", Help: "Hard authentication failures broadcast by the transport."},
	{ID: authclient.MetricCrossContextInvalidated, Name: "authclient_cross_context_invalidated_total", Help: "Teardowns triggered by another process clearing the shared store."},
	{ID: authclient.MetricUserUpdated, Name: "authclient_user_updated_total", Help: "Cached profile replacements."},
	{ID: authclient.MetricRequestRetry, Name: "authclient_request_retry_total", Help: "Scheduled request retries."},
	{ID: authclient.MetricRequestNetworkError, Name: "authclient_request_network_error_total", Help: "Terminal network-classified request failures."},
	{ID: authclient.MetricRequestHTTPError, Name: "authclient_request_http_error_total", Help: "Terminal http-classified request failures."},
	{ID: authclient.MetricRequestAuthError, Name: "authclient_request_auth_error_total", Help: "Terminal auth-classified request failures."},
	{ID: authclient.MetricRequestValidationError, Name: "authclient_request_validation_error_total", Help: "Terminal validation-classified request failures."},
	{ID: authclient.MetricPasswordResetRequest, Name: "authclient_password_reset_request_total", Help: "Password reset requests."},
	{ID: authclient.MetricPasswordResetConfirm, Name: "authclient_password_reset_confirm_total", Help: "Password reset confirmations."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: authclient.MetricVerifyLatency, Name: "authclient_verify_latency_seconds", Help: "Verification latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
