// Package authclient maintains the client-side session for the workscout
// job-search platform: it decides, continuously and without server help,
// whether the current process holds a valid session, avoids redundant or
// overlapping verification round trips, transparently recovers from transient
// network failures, and broadcasts session invalidation to every interested
// component — including other processes sharing the same credential store.
//
// The package is designed for concurrent callers: Manager methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authclient is the public surface. It exposes [Manager], [Builder], [Config],
// the [CredentialStore] implementations, and value types (Snapshot,
// SessionEvent, MetricsSnapshot, etc.). Request execution and error
// classification live in the transport subpackage; the metric export adapters
// live under metrics/export/.
//
// # What this package must NOT do
//
//   - Render UI or hold presentation state; callers read [Manager.Snapshot]
//     and re-render themselves.
//   - Issue, refresh, or cryptographically inspect credentials beyond the
//     optional local expiry check; the token is opaque.
//   - Contact the backend when no token is present — public pages must never
//     pay for a verification round trip.
//
// # Performance contract
//
// Snapshot is the hot path: it must not allocate beyond the returned struct
// and must never block on network I/O. VerifyAuth is allowed two round trips
// (status + profile); concurrent callers share one in-flight verification.
package authclient
