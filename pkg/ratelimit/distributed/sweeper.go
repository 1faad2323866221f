package distributed

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
)

// DefaultSweepSchedule runs a MemoryStore sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// Sweeper periodically removes expired records from a MemoryStore.
type Sweeper struct {
	cron *cron.Cron
}

// StartSweeper sweeps store on schedule, a standard five-field cron expression
// or a descriptor such as "@every 30s" or "@hourly". An empty schedule uses
// DefaultSweepSchedule. Intervals below one second are rounded up to one second.
func StartSweeper(store *MemoryStore, schedule string, logger *zap.Logger) (*Sweeper, error) {
	if store == nil {
		return nil, rlerrors.NewValidationError(module, "store", nil, "cannot be nil")
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := store.Sweep(); n > 0 {
			logger.Debug("swept expired rate limit records", zap.Int("removed", n))
		}
	})
	if err != nil {
		return nil, rlerrors.NewValidationError(module, "schedule", schedule, err.Error()).
			WithHint(`use a cron expression like "*/5 * * * *" or a descriptor like "@every 1m"`)
	}

	c.Start()
	return &Sweeper{cron: c}, nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
