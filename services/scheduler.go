// services/scheduler.go
package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartReconcileScheduler runs Reconcile every interval until the returned
// scheduler is shut down.
func (s *RelationService) StartReconcileScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			report, err := s.Reconcile(ctx)
			if err != nil {
				s.Log.Error("[RECONCILE] run failed", zap.Error(err))
				return
			}
			if report.GamesRepaired > 0 || report.UsersRepaired > 0 {
				s.Log.Info("[RECONCILE] repaired back-references",
					zap.Int("games", report.GamesRepaired),
					zap.Int("users", report.UsersRepaired))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
