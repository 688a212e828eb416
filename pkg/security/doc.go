// Package security holds the transport security pieces of the heartbeat
// server: TLS with certificate hot reload (package tls) and API key
// authentication for device requests (package auth). Both are off unless
// enabled under server.tls and server.auth.
package security
