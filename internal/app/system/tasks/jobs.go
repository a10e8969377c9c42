// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/sidequest/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Job names.
const (
	QuestExpirySweep  = "quest-expiry-sweep"
	StaleQuestCleanup = "stale-quest-cleanup"
)

// ExpirySweeper removes quests that ended long ago.
type ExpirySweeper interface {
	ExpireSweep(ctx context.Context, now time.Time) (int, error)
}

// StaleSweeper expires quests that started without anyone joining.
type StaleSweeper interface {
	SweepStale(ctx context.Context, now time.Time) (int, error)
}

// QuestExpirySweepJob deletes quests past the expiry grace and frees their
// members' active quest slot.
func QuestExpirySweepJob(s ExpirySweeper, obs metrics.Observer, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     QuestExpirySweep,
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := s.ExpireSweep(ctx, time.Now().UTC())
			obs.AddSwept(QuestExpirySweep, n)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("expired quests removed", zap.Int("count", n))
			}
			return nil
		},
	}
}

// StaleQuestCleanupJob marks empty quests whose start has long passed as
// expired. Listing never does this itself.
func StaleQuestCleanupJob(s StaleSweeper, obs metrics.Observer, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     StaleQuestCleanup,
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := s.SweepStale(ctx, time.Now().UTC())
			obs.AddSwept(StaleQuestCleanup, n)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Debug("stale quests expired", zap.Int("count", n))
			}
			return nil
		},
	}
}
