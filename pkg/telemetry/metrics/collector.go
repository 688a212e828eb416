package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"machinehub/statusboard/pkg/config"
	mhplErrors "machinehub/statusboard/pkg/mhpl/errors"
)

// Render outcomes.
const (
	// OutcomeRendered means the template rendered without error.
	OutcomeRendered = "rendered"
	// OutcomeFallback means rendering failed and the raw template was returned.
	OutcomeFallback = "fallback"
	// OutcomeError means rendering failed and the error reached the caller.
	OutcomeError = "error"
)

// Result labels for operations that either succeed or fail.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultLimited = "rate_limited"
)

// Collector owns the Prometheus registry and every statusboard metric.
// It implements the evaluator's call observer.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	render          *RenderMetrics
	registryMetrics *RegistryMetrics
}

// NewCollector creates a collector. If registry is nil a fresh private
// registry is created, with Go runtime and process collectors attached.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		enabled:         cfg.IsEnabled(),
		registry:        registry,
		render:          NewRenderMetrics(namespace, registry),
		registryMetrics: NewRegistryMetrics(namespace, registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) active() bool {
	return c != nil && c.enabled
}

// RecordRender records one template render.
func (c *Collector) RecordRender(outcome string, duration time.Duration) {
	if !c.active() {
		return
	}
	c.render.rendersTotal.WithLabelValues(outcome).Inc()
	c.render.renderDuration.Observe(duration.Seconds())
}

// ObserveCall records one function call made by the evaluator.
func (c *Collector) ObserveCall(name string, duration time.Duration, err error) {
	if !c.active() {
		return
	}
	c.render.callsTotal.WithLabelValues(name).Inc()
	c.render.callDuration.WithLabelValues(name).Observe(duration.Seconds())
	if err != nil {
		kind := string(mhplErrors.KindOf(err))
		if kind == "" {
			kind = "unknown"
		}
		c.render.callErrors.WithLabelValues(name, kind).Inc()
	}
}

// RecordTemplateReload records a template file reload attempt.
func (c *Collector) RecordTemplateReload(err error) {
	if !c.active() {
		return
	}
	c.render.templateReloads.WithLabelValues(result(err)).Inc()
}

// RecordHeartbeat records a device heartbeat.
func (c *Collector) RecordHeartbeat(err error) {
	if !c.active() {
		return
	}
	c.registryMetrics.heartbeatsTotal.WithLabelValues(result(err)).Inc()
}

// RecordRateLimited records a heartbeat refused by the per-device rate limit.
func (c *Collector) RecordRateLimited() {
	if !c.active() {
		return
	}
	c.registryMetrics.heartbeatsTotal.WithLabelValues(ResultLimited).Inc()
}

// RecordPrune records one retention run and the rows it removed.
func (c *Collector) RecordPrune(removed int64, err error) {
	if !c.active() {
		return
	}
	c.registryMetrics.pruneRuns.WithLabelValues(result(err)).Inc()
	if removed > 0 {
		c.registryMetrics.prunedRows.Add(float64(removed))
	}
}

// SetDevices records the current alive and dead device counts.
func (c *Collector) SetDevices(alive, dead int) {
	if !c.active() {
		return
	}
	c.registryMetrics.devices.WithLabelValues("alive").Set(float64(alive))
	c.registryMetrics.devices.WithLabelValues("dead").Set(float64(dead))
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
