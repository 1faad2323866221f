// Package metrics provides Prometheus instrumentation for ringlimit limiters.
//
// Limiters report through the distributed.Observer interface; the
// distributed.NewMetricsObserver adapter records into a Registry from this package.
//
// # Quick Start
//
//	reg := metrics.NewRegistry(prometheus.NewRegistry())
//	limiter, _ := distributed.New(distributed.Config{
//		Key:      "api",
//		Store:    store,
//		Observer: distributed.NewMetricsObserver("api", reg),
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Available Metrics
//
//   - ringlimit_window_checks_total{limiter_key,outcome}: threshold checks, outcome "exceeded" or "within"
//   - ringlimit_window_wait_duration_seconds{limiter_key}: time spent polling until a subject cleared its threshold
//   - ringlimit_lock_waits_total{limiter_key}: subject lock acquisitions attempted
//   - ringlimit_lock_wait_duration_seconds{limiter_key}: time spent acquiring the subject lock
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.NewRegistry(),
//		Namespace: "myapp",                            // Override default "ringlimit"
//		Labels:    prometheus.Labels{"region": "eu"},  // Constant labels
//	}
//	reg := metrics.NewRegistryWithConfig(config)
//
// Metrics are updated only when limiter operations occur; there are no
// background goroutines or timers.
package metrics
