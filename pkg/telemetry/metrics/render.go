package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RenderMetrics tracks template rendering.
//
// Metrics:
//   - statusboard_renders_total: renders by outcome
//   - statusboard_render_duration_seconds: end-to-end render latency
//   - statusboard_function_calls_total: function calls by name
//   - statusboard_function_call_duration_seconds: function call latency
//   - statusboard_function_errors_total: failed calls by name and error kind
//   - statusboard_template_reloads_total: template file reloads by result
type RenderMetrics struct {
	rendersTotal    *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	callsTotal      *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	callErrors      *prometheus.CounterVec
	templateReloads *prometheus.CounterVec
}

// NewRenderMetrics creates and registers render metrics with the provided registry.
func NewRenderMetrics(namespace string, registry *prometheus.Registry) *RenderMetrics {
	rm := &RenderMetrics{
		rendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of template renders",
			},
			[]string{"outcome"},
		),

		renderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Duration of template renders in seconds",
				// Renders hit the device store; 10µs to ~80ms
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14),
			},
		),

		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "function_calls_total",
				Help:      "Total number of template function calls",
			},
			[]string{"function"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "function_call_duration_seconds",
				Help:      "Duration of template function calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 17),
			},
			[]string{"function"},
		),

		callErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "function_errors_total",
				Help:      "Total number of failed template function calls",
			},
			[]string{"function", "kind"},
		),

		templateReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "template_reloads_total",
				Help:      "Total number of template file reloads",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		rm.rendersTotal,
		rm.renderDuration,
		rm.callsTotal,
		rm.callDuration,
		rm.callErrors,
		rm.templateReloads,
	)

	return rm
}
