package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"machinehub/statusboard/pkg/config"
	"machinehub/statusboard/pkg/mhpl"
	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
	"machinehub/statusboard/pkg/registry"
	"machinehub/statusboard/pkg/telemetry/logging"
	"machinehub/statusboard/pkg/telemetry/metrics"
	"machinehub/statusboard/pkg/telemetry/tracing"
)

var now = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

type staticTemplates map[string]string

func (s staticTemplates) Lookup(device string) string {
	if t, ok := s[device]; ok {
		return t
	}
	return s[""]
}

type fixture struct {
	store     *registry.MemoryRegistry
	responder *Responder
	collector *metrics.Collector
	logs      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := registry.NewMemoryRegistry(
		registry.Device{Name: "alpha", LastHeartbeat: now.Add(-time.Hour), Report: "GPU 480", Active: true},
		registry.Device{Name: "beta", LastHeartbeat: now.Add(-48 * time.Hour), Active: true},
		registry.Device{Name: "gamma", ReturnMessage: "#report(alpha) / #deads()", Active: true},
		registry.Device{Name: "broken", ReturnMessage: "#plus(1)", Active: true},
	)
	clock := func() time.Time { return now }

	collector := metrics.NewCollector(config.MetricsConfig{Namespace: "test"}, prometheus.NewRegistry())
	pipeline := mhpl.New(mhpl.Options{Devices: store, Now: clock, Observer: collector})

	var logs bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "debug", Writer: &logs})
	require.NoError(t, err)

	r, err := New(Config{
		Store:     store,
		Renderer:  pipeline,
		Templates: staticTemplates{"": "Alive Device: #alives() / #devices()"},
		Metrics:   collector,
		Logger:    logger,
		Now:       clock,
	})
	require.NoError(t, err)

	return &fixture{store: store, responder: r, collector: collector, logs: &logs}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Store: registry.NewMemoryRegistry()})
	assert.Error(t, err)
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name         string
		device       string
		wantTemplate string
		wantText     string
		wantFallback bool
	}{
		{
			name:         "store default template",
			device:       "alpha",
			wantTemplate: "Alive Device: #alives() / #devices()",
			wantText:     "Alive Device: 1 / 4",
		},
		{
			name:         "device return message wins",
			device:       "gamma",
			wantTemplate: "#report(alpha) / #deads()",
			wantText:     "GPU 480 / 3",
		},
		{
			name:         "render error falls back to raw template",
			device:       "broken",
			wantTemplate: "#plus(1)",
			wantText:     "#plus(1)",
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			reply, err := f.responder.Respond(context.Background(), tt.device)
			require.NoError(t, err)

			assert.Equal(t, tt.device, reply.Device)
			assert.Equal(t, tt.wantTemplate, reply.Template)
			assert.Equal(t, tt.wantText, reply.Text)
			assert.Equal(t, tt.wantFallback, reply.Fallback)
			_, uuidErr := uuid.Parse(reply.RenderID)
			assert.NoError(t, uuidErr)

			if tt.wantFallback {
				assert.Equal(t, mhplErrors.KindParamUnmatch, mhplErrors.KindOf(reply.Err))
				assert.Contains(t, f.logs.String(), reply.RenderID)
				assert.Contains(t, f.logs.String(), `"kind":"param_unmatch"`)
			} else {
				assert.NoError(t, reply.Err)
			}
		})
	}
}

func TestRespond_UnknownDevice(t *testing.T) {
	f := newFixture(t)

	_, err := f.responder.Respond(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrDeviceNotFound))
}

func TestRespond_LogsCarryRenderID(t *testing.T) {
	f := newFixture(t)

	reply, err := f.responder.Respond(context.Background(), "alpha")
	require.NoError(t, err)

	line := strings.TrimSpace(f.logs.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, reply.RenderID, entry["render_id"])
	assert.Equal(t, "alpha", entry["device"])
	assert.Equal(t, "responder", entry["component"])
}

func TestHeartbeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply, err := f.responder.Heartbeat(ctx, "beta", "disk 91%")
	require.NoError(t, err)
	assert.Equal(t, "Alive Device: 2 / 4", reply.Text)

	dev, err := f.store.Device(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, now, dev.LastHeartbeat)
	assert.Equal(t, "disk 91%", dev.Report)

	buckets, err := f.store.HeartbeatCounts(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 1, buckets[0].Devices)
}

func TestHeartbeat_UnknownDevice(t *testing.T) {
	f := newFixture(t)

	_, err := f.responder.Heartbeat(context.Background(), "nobody", "")
	require.ErrorIs(t, err, registry.ErrDeviceNotFound)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	s, err := f.responder.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{At: now, Total: 4, Alive: 1, Dead: 3}, s)
}

func TestMetricsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.responder.Heartbeat(ctx, "alpha", "ok")
	require.NoError(t, err)
	_, err = f.responder.Respond(ctx, "broken")
	require.NoError(t, err)

	expected := `
# HELP test_renders_total Total number of template renders
# TYPE test_renders_total counter
test_renders_total{outcome="fallback"} 1
test_renders_total{outcome="rendered"} 1
# HELP test_heartbeats_total Total number of device heartbeats
# TYPE test_heartbeats_total counter
test_heartbeats_total{result="success"} 1
# HELP test_devices Number of registered devices by state
# TYPE test_devices gauge
test_devices{state="alive"} 1
test_devices{state="dead"} 3
`
	err = testutil.GatherAndCompare(f.collector.Registry(), strings.NewReader(expected),
		"test_renders_total", "test_heartbeats_total", "test_devices")
	assert.NoError(t, err)
}

func TestSpansRecorded(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer, err := tracing.NewWithProcessor(config.TracingConfig{Sampler: tracing.SamplerAlways}, "test", rec)
	require.NoError(t, err)

	f := newFixture(t)
	f.responder.tracer = tracer
	ctx := context.Background()

	reply, err := f.responder.Heartbeat(ctx, "alpha", "ok")
	require.NoError(t, err)
	fallback, err := f.responder.Respond(ctx, "broken")
	require.NoError(t, err)

	ended := rec.Ended()
	require.Len(t, ended, 3)

	respond, heartbeat, broken := ended[0], ended[1], ended[2]
	assert.Equal(t, "responder.respond", respond.Name())
	assert.Equal(t, "responder.heartbeat", heartbeat.Name())
	assert.Equal(t, heartbeat.SpanContext().SpanID(), respond.Parent().SpanID())

	attrs := map[string]string{}
	for _, kv := range respond.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, reply.RenderID, attrs[string(tracing.AttrRenderID)])
	assert.Equal(t, "false", attrs[string(tracing.AttrFallback)])
	assert.Equal(t, codes.Ok, respond.Status().Code)

	assert.Equal(t, codes.Error, broken.Status().Code)
	var kind string
	for _, kv := range broken.Attributes() {
		if kv.Key == tracing.AttrErrorKind {
			kind = kv.Value.AsString()
		}
	}
	assert.Equal(t, string(mhplErrors.KindParamUnmatch), kind)
	assert.True(t, fallback.Fallback)
}
