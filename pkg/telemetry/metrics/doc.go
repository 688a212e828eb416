// Package metrics provides Prometheus metrics collection for statusboard.
//
// # Metrics Categories
//
//   - Render metrics: template renders by outcome, render latency, and
//     per-function call counts, latency, and errors by kind
//   - Registry metrics: heartbeats, retention prune runs and removed rows,
//     alive and dead device gauges
//   - Template metrics: template file reloads by result
//
// All metrics live on a private registry owned by the Collector and are
// served by Collector.Handler. A Collector built from a disabled
// configuration, or a nil *Collector, records nothing.
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	pipeline, _ := mhpl.New(mhpl.Options{Devices: store, Observer: collector})
//	router.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
