// Package auth authenticates device requests with API keys.
//
// Keys come from server.auth.keys. A request presents its key in the
// configured header (X-API-Key by default) or as "Authorization: Bearer
// <key>". Keys are compared in constant time; the key holder's name is put
// in the request context and log lines. Disabled keys are rejected like
// unknown ones.
package auth
