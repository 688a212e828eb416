package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegistryMetrics tracks the device registry.
//
// Metrics:
//   - statusboard_heartbeats_total: heartbeats by result (success, error, rate_limited)
//   - statusboard_retention_runs_total: heartbeat log prune runs by result
//   - statusboard_retention_pruned_rows_total: heartbeat log rows removed
//   - statusboard_devices: devices by state (alive, dead)
type RegistryMetrics struct {
	heartbeatsTotal *prometheus.CounterVec
	pruneRuns       *prometheus.CounterVec
	prunedRows      prometheus.Counter
	devices         *prometheus.GaugeVec
}

// NewRegistryMetrics creates and registers registry metrics with the provided registry.
func NewRegistryMetrics(namespace string, registry *prometheus.Registry) *RegistryMetrics {
	rm := &RegistryMetrics{
		heartbeatsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "heartbeats_total",
				Help:      "Total number of device heartbeats",
			},
			[]string{"result"},
		),

		pruneRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "runs_total",
				Help:      "Total number of heartbeat log prune runs",
			},
			[]string{"result"},
		),

		prunedRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retention",
				Name:      "pruned_rows_total",
				Help:      "Total number of heartbeat log rows removed",
			},
		),

		devices: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "devices",
				Help:      "Number of registered devices by state",
			},
			[]string{"state"},
		),
	}

	registry.MustRegister(
		rm.heartbeatsTotal,
		rm.pruneRuns,
		rm.prunedRows,
		rm.devices,
	)

	return rm
}
