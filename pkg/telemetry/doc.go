// Package telemetry groups statusboard's observability packages.
//
//   - logging: slog setup with request-scoped fields (render_id, device, trace_id)
//   - metrics: Prometheus collector for renders, heartbeats and retention
//   - tracing: OpenTelemetry spans for HTTP requests and template renders
//   - health: liveness and readiness endpoints
//
// Each subpackage is usable on its own. Disabled components are nil-safe or
// backed by no-op implementations, so callers never branch on configuration.
package telemetry
