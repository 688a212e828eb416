package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey struct{}

// WithClient returns ctx carrying the authenticated key holder's name.
func WithClient(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKey{}, name)
}

// Client returns the authenticated key holder's name, or "".
func Client(ctx context.Context) string {
	name, _ := ctx.Value(contextKey{}).(string)
	return name
}

// Middleware rejects requests without a valid API key.
type Middleware struct {
	validator *Validator
	header    string
	logger    *slog.Logger
	onReject  func(w http.ResponseWriter, err error)
}

// NewMiddleware creates the middleware. header names the key header; a nil
// onReject writes a plain 401.
func NewMiddleware(v *Validator, header string, logger *slog.Logger, onReject func(http.ResponseWriter, error)) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	if onReject == nil {
		onReject = func(w http.ResponseWriter, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return &Middleware{
		validator: v,
		header:    header,
		logger:    logger.With("component", "auth"),
		onReject:  onReject,
	}
}

// Handle wraps next with key authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, err := m.validator.Validate(m.extract(r))
		if err != nil {
			m.logger.WarnContext(r.Context(), "Request rejected",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="statusboard"`)
			m.onReject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), name)))
	})
}

func (m *Middleware) extract(r *http.Request) string {
	if m.header != "" {
		if v := r.Header.Get(m.header); v != "" {
			return v
		}
	}
	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
