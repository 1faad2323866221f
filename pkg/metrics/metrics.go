// Package metrics provides Prometheus instrumentation for ringlimit components.
package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metric instances for ringlimit limiters.
type Registry struct {
	// Threshold checks, labelled with outcome "exceeded" or "within"
	Checks *prometheus.CounterVec

	// Time spent polling until a subject fell back under its threshold
	WaitDuration *prometheus.HistogramVec

	// Lock-coordinated calls that started waiting for the subject lock
	LockWaits *prometheus.CounterVec

	// Time spent acquiring the subject lock
	LockWaitDuration *prometheus.HistogramVec
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry bound to prometheus.DefaultRegisterer.
// It is created on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{
		Enabled:   true,
		Registry:  reg,
		Namespace: DefaultNamespace,
	})
}

// NewRegistryWithConfig creates a registry honouring the namespace and constant
// labels in config. A nil config.Registry falls back to prometheus.DefaultRegisterer.
// Collectors already registered with the same registerer are reused, so any number
// of limiters can share one registerer, each labelled by its limiter_key.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Registry{
		Checks: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "window",
				Name:        "checks_total",
				Help:        "Total number of threshold checks by outcome",
				ConstLabels: config.Labels,
			},
			[]string{"limiter_key", "outcome"},
		)),

		WaitDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "window",
				Name:        "wait_duration_seconds",
				Help:        "Time spent waiting for a subject to fall under its threshold",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: config.Labels,
			},
			[]string{"limiter_key"},
		)),

		LockWaits: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "lock",
				Name:        "waits_total",
				Help:        "Total number of subject lock acquisitions attempted",
				ConstLabels: config.Labels,
			},
			[]string{"limiter_key"},
		)),

		LockWaitDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "lock",
				Name:        "wait_duration_seconds",
				Help:        "Time spent acquiring the subject lock",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: config.Labels,
			},
			[]string{"limiter_key"},
		)),
	}
}

// register adds c to reg, returning the collector registered earlier when an
// identical one already exists. Any other registration error panics, as
// promauto does.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
