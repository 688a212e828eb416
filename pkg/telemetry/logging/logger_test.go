package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"machinehub/statusboard/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid JSON config", config: Config{Level: "info", Format: "json"}},
		{name: "valid text config", config: Config{Level: "debug", Format: "text"}},
		{name: "empty config uses defaults", config: Config{}},
		{name: "uppercase level", config: Config{Level: "WARN"}},
		{name: "invalid level", config: Config{Level: "verbose"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "console"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	require.NoError(t, err)

	ctx := WithDevice(WithRenderID(context.Background(), "r-1"), "gpu-01")
	logger.With("component", "test").InfoContext(ctx, "rendered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rendered", entry["msg"])
	assert.Equal(t, "r-1", entry["render_id"])
	assert.Equal(t, "gpu-01", entry["device"])
	assert.Equal(t, "test", entry["component"])
}

func TestServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf, Service: "statusboard", Version: "1.2.3"})
	require.NoError(t, err)

	logger.Info("started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "statusboard", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
}

func TestContextFieldsAbsent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.InfoContext(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "render_id")
	assert.NotContains(t, buf.String(), "device")
}

func TestContextGetters(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRenderID(ctx))
	assert.Empty(t, GetDevice(ctx))

	ctx = WithRenderID(ctx, "abc")
	ctx = WithDevice(ctx, "alpha")
	assert.Equal(t, "abc", GetRenderID(ctx))
	assert.Equal(t, "alpha", GetDevice(ctx))
}

func TestFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := FromConfig(config.LoggingConfig{Level: "debug", Format: "text", AddSource: true}, &buf)
	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Debug("hello")
	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=hello"), out)
	assert.Contains(t, out, "source=")
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing happens")
}

func TestContextFields_TraceID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	require.NoError(t, err)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	logger.InfoContext(trace.ContextWithSpanContext(context.Background(), sc), "traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
}
