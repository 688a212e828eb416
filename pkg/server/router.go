package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"machinehub/statusboard/pkg/security/auth"
	"machinehub/statusboard/pkg/telemetry/health"
	"machinehub/statusboard/pkg/telemetry/tracing"
)

// Handler returns the routed HTTP handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.deps.Tracer != nil {
		r.Use(tracing.HTTPMiddleware(s.deps.Tracer))
	}
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/healthz", s.deps.Health.LivenessHandler())
	r.Get("/readyz", s.deps.Health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.deps.Build.Version, s.deps.Build.Commit, s.deps.Build.BuildTime))

	if s.deps.Metrics != nil {
		r.Handle(s.deps.MetricsPath, s.deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if s.deps.APIKeys != nil {
			m := auth.NewMiddleware(s.deps.APIKeys, s.config.Auth.Header, s.logger, func(w http.ResponseWriter, err error) {
				writeError(w, http.StatusUnauthorized, err.Error())
			})
			r.Use(m.Handle)
		}
		if s.deps.Responder != nil {
			r.Post("/heartbeat", s.handleHeartbeat)
		}
		if s.deps.Devices != nil {
			r.Get("/devices", s.handleListDevices)
			r.Get("/heartbeats", s.handleHeartbeatLog)
		}
	})

	return r
}
