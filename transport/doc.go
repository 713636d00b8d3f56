// Package transport provides the resilient HTTP client used by authclient to
// reach the backend API.
//
// # Design
//
// Every call runs through two fixed stages. The outbound stage resolves the
// API base address through an injected [BaseURLResolver], attaches the bearer
// credential from the configured [CredentialSource], tags the request with a
// collision-resistant X-Request-ID, and appends a cache-busting parameter to
// idempotent reads. The inbound stage classifies failures into a stable
// [ErrorKind] taxonomy, retries transient failures with exponential backoff,
// and routes hard authentication failures (401 outside the auth endpoints)
// to the registered auth-failure handler.
//
// # Architecture boundaries
//
// transport owns request execution and error classification. Session state
// lives in the root authclient package; transport signals it only through
// the handler installed with [Client.OnAuthFailure].
//
// # What this package must NOT do
//
//   - Hold or mutate session state beyond clearing the credential source on
//     a hard authentication failure.
//   - Retry a 401 or any terminal status.
//   - Import the root authclient package (no import cycles).
package transport
