package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"machinehub/statusboard/pkg/registry"
)

// maxFormBytes bounds a heartbeat request body.
const maxFormBytes = 64 << 10

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// DeviceView is one device in GET /api/devices.
type DeviceView struct {
	Name          string    `json:"name"`
	LastHeartbeat time.Time `json:"last_heartbeat,omitzero"`
	Elapsed       string    `json:"elapsed,omitempty"`
	Alive         bool      `json:"alive"`
	Report        string    `json:"report"`
	ReturnMessage string    `json:"return_message,omitempty"`
	Active        bool      `json:"active"`
}

// DevicesResponse is the body of GET /api/devices.
type DevicesResponse struct {
	Devices []DeviceView `json:"devices"`
	Total   int          `json:"total"`
	Alive   int          `json:"alive"`
	Dead    int          `json:"dead"`
}

// BucketView is one heartbeat log bucket.
type BucketView struct {
	At      time.Time `json:"at"`
	Devices int       `json:"devices"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: status, Message: message})
}

// handleHeartbeat records a heartbeat and replies with the rendered message.
func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	name := r.PostFormValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if s.deps.Limiter != nil {
		res := s.deps.Limiter.Allow(name)
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			s.logger.DebugContext(r.Context(), "heartbeat rate limited", "device", name, "retry_after", res.RetryAfter)
			w.Header().Set("Retry-After", res.RetryAfterSeconds())
			writeError(w, http.StatusTooManyRequests, "too many heartbeats")
			return
		}
	}

	reply, err := s.deps.Responder.Heartbeat(r.Context(), name, r.PostFormValue("report"))
	switch {
	case errors.Is(err, registry.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "invalid name error")
		return
	case errors.Is(err, registry.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "heartbeat failed", "device", name, "error", err)
		writeError(w, http.StatusInternalServerError, "heartbeat failed")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Render-ID", reply.RenderID)
	if reply.Fallback {
		w.Header().Set("X-Render-Fallback", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, reply.Text)
}

// handleListDevices lists every device with its alive state.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.deps.Devices.Devices(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list devices", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}

	now := s.deps.Now()
	resp := DevicesResponse{Devices: make([]DeviceView, 0, len(devices)), Total: len(devices)}
	for _, d := range devices {
		view := DeviceView{
			Name:          d.Name,
			LastHeartbeat: d.LastHeartbeat,
			Alive:         d.AliveAt(now, s.deps.AliveWindow),
			Report:        d.Report,
			ReturnMessage: d.ReturnMessage,
			Active:        d.Active,
		}
		if d.HasHeartbeat() {
			view.Elapsed = now.Sub(d.LastHeartbeat).Truncate(time.Second).String()
		}
		if view.Alive {
			resp.Alive++
		}
		resp.Devices = append(resp.Devices, view)
	}
	resp.Dead = resp.Total - resp.Alive

	writeJSON(w, http.StatusOK, resp)
}

// handleHeartbeatLog returns heartbeat log buckets newer than ?since
// (a duration, default 24h).
func (s *Server) handleHeartbeatLog(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if v := r.URL.Query().Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "since must be a positive duration")
			return
		}
		window = d
	}

	buckets, err := s.deps.Devices.HeartbeatCounts(r.Context(), s.deps.Now().Add(-window))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to read heartbeat log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read heartbeat log")
		return
	}

	views := make([]BucketView, 0, len(buckets))
	for _, b := range buckets {
		views = append(views, BucketView{At: b.At, Devices: b.Devices})
	}
	writeJSON(w, http.StatusOK, views)
}
