// Package prometheus provides Prometheus collectors for authclient metrics.
//
// [NewPrometheusExporter] accepts an [authclient.Manager] and exposes an [http.Handler]
// that renders all authclient counters and histograms in Prometheus text exposition format.
// Counter names are prefixed authclient_*_total; the single histogram is
// authclient_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate manager state.
package prometheus
