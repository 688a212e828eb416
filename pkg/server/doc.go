// Package server provides the statusboard HTTP server.
//
// The server exposes the heartbeat endpoint devices call, read-only views of
// the registry, and the operational endpoints used by monitoring:
//
//   - POST /api/heartbeat    - record a heartbeat (form fields name, report) and
//     reply with the device's rendered message as text/plain
//   - GET  /api/devices      - devices with alive state and summary counts
//   - GET  /api/heartbeats   - heartbeat log buckets (?since=24h)
//   - GET  /healthz          - liveness probe
//   - GET  /readyz           - readiness probe
//   - GET  /version          - build information
//   - GET  /metrics          - Prometheus metrics (path configurable)
//
// Routing uses chi. Start blocks until its context is cancelled and then
// shuts down gracefully within the configured timeout.
package server
