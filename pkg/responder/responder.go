package responder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
	"machinehub/statusboard/pkg/mhpl/functions"
	"machinehub/statusboard/pkg/registry"
	"machinehub/statusboard/pkg/telemetry/logging"
	"machinehub/statusboard/pkg/telemetry/metrics"
	"machinehub/statusboard/pkg/telemetry/tracing"
)

// Renderer renders a template string.
type Renderer interface {
	Feed(ctx context.Context, template string) (string, error)
}

// TemplateSource resolves the fallback template for a device.
type TemplateSource interface {
	Lookup(device string) string
}

// Reply is the message returned to a device.
type Reply struct {
	RenderID string
	Device   string
	Template string // Unrendered template text
	Text     string // Rendered text, or Template on fallback
	Fallback bool
	Err      error // Render error that caused the fallback
}

// Summary is the registry's alive and dead counts at one instant.
type Summary struct {
	At    time.Time
	Total int
	Alive int
	Dead  int
}

// Config configures a Responder.
type Config struct {
	Store       registry.Store
	Renderer    Renderer
	Templates   TemplateSource
	Metrics     *metrics.Collector // Optional
	Tracer      *tracing.Tracer    // Optional
	Logger      *slog.Logger
	Now         func() time.Time
	AliveWindow time.Duration
}

// Responder renders reply messages for devices.
type Responder struct {
	store     registry.Store
	renderer  Renderer
	templates TemplateSource
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
	now       func() time.Time
	window    time.Duration
}

// New creates a responder.
func New(cfg Config) (*Responder, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("responder: store is required")
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("responder: renderer is required")
	}

	r := &Responder{
		store:     cfg.Store,
		renderer:  cfg.Renderer,
		templates: cfg.Templates,
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
		logger:    cfg.Logger,
		now:       cfg.Now,
		window:    cfg.AliveWindow,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "responder")
	if r.tracer == nil {
		r.tracer = tracing.Disabled()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.window <= 0 {
		r.window = functions.DefaultAliveWindow
	}
	return r, nil
}

// Respond renders the reply for device without recording a heartbeat.
// Registry failures are returned; render failures produce a fallback reply.
func (r *Responder) Respond(ctx context.Context, device string) (Reply, error) {
	reply := Reply{
		RenderID: uuid.NewString(),
		Device:   device,
	}
	ctx, span := r.tracer.Start(ctx, "responder.respond")
	defer span.End()
	ctx = logging.WithDevice(logging.WithRenderID(ctx, reply.RenderID), device)

	dev, err := r.store.Device(ctx, device)
	if err != nil {
		tracing.SetError(span, err)
		return reply, err
	}

	reply.Template = dev.ReturnMessage
	if reply.Template == "" && r.templates != nil {
		reply.Template = r.templates.Lookup(device)
	}

	start := time.Now()
	text, err := r.renderer.Feed(ctx, reply.Template)
	elapsed := time.Since(start)

	if err != nil {
		reply.Text = reply.Template
		reply.Fallback = true
		reply.Err = err
		tracing.SetRender(span, reply.RenderID, device, len(reply.Template), len(reply.Text), true)
		tracing.SetError(span, err)
		r.metrics.RecordRender(metrics.OutcomeFallback, elapsed)
		r.logger.WarnContext(ctx, "Template render failed, replying with raw template",
			"error", err,
			"kind", string(mhplErrors.KindOf(err)),
		)
		return reply, nil
	}

	reply.Text = text
	tracing.SetRender(span, reply.RenderID, device, len(reply.Template), len(reply.Text), false)
	tracing.SetOK(span)
	r.metrics.RecordRender(metrics.OutcomeRendered, elapsed)
	r.logger.DebugContext(ctx, "Template rendered",
		"duration_us", elapsed.Microseconds(),
		"bytes", len(text),
	)
	return reply, nil
}

// Heartbeat records a check-in for device, then renders its reply.
func (r *Responder) Heartbeat(ctx context.Context, device, report string) (Reply, error) {
	ctx, span := r.tracer.Start(ctx, "responder.heartbeat",
		trace.WithAttributes(tracing.AttrDevice.String(device)))
	defer span.End()

	err := r.store.Heartbeat(ctx, device, report, r.now())
	r.metrics.RecordHeartbeat(err)
	if err != nil {
		tracing.SetError(span, err)
		r.logger.WarnContext(logging.WithDevice(ctx, device), "Heartbeat rejected", "error", err)
		return Reply{Device: device}, err
	}

	if s, err := r.Summary(ctx); err != nil {
		r.logger.WarnContext(ctx, "Failed to refresh device counts", "error", err)
	} else {
		span.SetAttributes(
			tracing.AttrDevicesAlive.Int(s.Alive),
			tracing.AttrDevicesDead.Int(s.Dead),
		)
	}

	return r.Respond(ctx, device)
}

// Summary counts alive and dead devices and publishes the counts as metrics.
func (r *Responder) Summary(ctx context.Context) (Summary, error) {
	devices, err := r.store.Devices(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{At: r.now(), Total: len(devices)}
	for _, d := range devices {
		if d.AliveAt(s.At, r.window) {
			s.Alive++
		}
	}
	s.Dead = s.Total - s.Alive

	r.metrics.SetDevices(s.Alive, s.Dead)
	return s, nil
}
