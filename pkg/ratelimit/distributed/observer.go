package distributed

import (
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/ringlimit/pkg/metrics"
)

// Observer receives limiter lifecycle callbacks. Implementations must be safe
// for concurrent use and should return quickly; they run on the caller's goroutine.
type Observer interface {
	// LockWait is called before DoLocked starts acquiring the subject lock.
	LockWait(subject, lock string)

	// LockAcquired is called once the subject lock is held.
	LockAcquired(subject, lock string, waited time.Duration)

	// CountChecked is called after every windowed count taken while blocking.
	CountChecked(subject string, count, threshold int64)

	// ThresholdCleared is called when a blocking call may proceed.
	ThresholdCleared(subject string, waited time.Duration)
}

// NopObserver ignores every callback.
type NopObserver struct{}

func (NopObserver) LockWait(string, string)                    {}
func (NopObserver) LockAcquired(string, string, time.Duration) {}
func (NopObserver) CountChecked(string, int64, int64)          {}
func (NopObserver) ThresholdCleared(string, time.Duration)     {}

// Observers fans every callback out to each observer in order.
type Observers []Observer

func (obs Observers) LockWait(subject, lock string) {
	for _, o := range obs {
		o.LockWait(subject, lock)
	}
}

func (obs Observers) LockAcquired(subject, lock string, waited time.Duration) {
	for _, o := range obs {
		o.LockAcquired(subject, lock, waited)
	}
}

func (obs Observers) CountChecked(subject string, count, threshold int64) {
	for _, o := range obs {
		o.CountChecked(subject, count, threshold)
	}
}

func (obs Observers) ThresholdCleared(subject string, waited time.Duration) {
	for _, o := range obs {
		o.ThresholdCleared(subject, waited)
	}
}

// LogObserver writes lifecycle events as debug-level structured logs.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a LogObserver. A nil logger discards everything.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) LockWait(subject, lock string) {
	o.logger.Debug("waiting for rate limit lock",
		zap.String("subject", subject),
		zap.String("lock", lock),
	)
}

func (o *LogObserver) LockAcquired(subject, lock string, waited time.Duration) {
	o.logger.Debug("rate limit lock acquired",
		zap.String("subject", subject),
		zap.String("lock", lock),
		zap.Duration("waited", waited),
	)
}

func (o *LogObserver) CountChecked(subject string, count, threshold int64) {
	o.logger.Debug("rate limit count checked",
		zap.String("subject", subject),
		zap.Int64("count", count),
		zap.Int64("threshold", threshold),
		zap.Bool("exceeded", count >= threshold),
	)
}

func (o *LogObserver) ThresholdCleared(subject string, waited time.Duration) {
	o.logger.Debug("rate limit threshold cleared",
		zap.String("subject", subject),
		zap.Duration("waited", waited),
	)
}

// MetricsObserver records lifecycle events into a Prometheus registry.
type MetricsObserver struct {
	key      string
	registry *metrics.Registry
}

// NewMetricsObserver creates a MetricsObserver labelling every series with key.
// A nil registry uses metrics.Default().
func NewMetricsObserver(key string, registry *metrics.Registry) *MetricsObserver {
	if registry == nil {
		registry = metrics.Default()
	}
	return &MetricsObserver{key: key, registry: registry}
}

func (o *MetricsObserver) LockWait(string, string) {
	o.registry.LockWaits.WithLabelValues(o.key).Inc()
}

func (o *MetricsObserver) LockAcquired(_, _ string, waited time.Duration) {
	o.registry.LockWaitDuration.WithLabelValues(o.key).Observe(waited.Seconds())
}

func (o *MetricsObserver) CountChecked(_ string, count, threshold int64) {
	outcome := "within"
	if count >= threshold {
		outcome = "exceeded"
	}
	o.registry.Checks.WithLabelValues(o.key, outcome).Inc()
}

func (o *MetricsObserver) ThresholdCleared(_ string, waited time.Duration) {
	o.registry.WaitDuration.WithLabelValues(o.key).Observe(waited.Seconds())
}

// NewObserver combines a LogObserver with a MetricsObserver for key. Metrics
// are only recorded when config.Enabled is set.
func NewObserver(logger *zap.Logger, key string, config metrics.Config) Observers {
	obs := Observers{NewLogObserver(logger)}
	if config.Enabled {
		obs = append(obs, NewMetricsObserver(key, metrics.NewRegistryWithConfig(config)))
	}
	return obs
}
