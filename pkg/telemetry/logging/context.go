package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RenderIDKey is the context key for the ID assigned to one template render.
	RenderIDKey contextKey = "render_id"

	// DeviceKey is the context key for the device a request concerns.
	DeviceKey contextKey = "device"
)

// WithRenderID adds a render ID to the context.
func WithRenderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RenderIDKey, id)
}

// GetRenderID retrieves the render ID from the context.
func GetRenderID(ctx context.Context) string {
	if id, ok := ctx.Value(RenderIDKey).(string); ok {
		return id
	}
	return ""
}

// WithDevice adds a device name to the context.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, DeviceKey, device)
}

// GetDevice retrieves the device name from the context.
func GetDevice(ctx context.Context) string {
	if device, ok := ctx.Value(DeviceKey).(string); ok {
		return device
	}
	return ""
}

// contextAttrs returns the log attributes carried by ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id := GetRenderID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(RenderIDKey), id))
	}
	if device := GetDevice(ctx); device != "" {
		attrs = append(attrs, slog.String(string(DeviceKey), device))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
	}
	return attrs
}
