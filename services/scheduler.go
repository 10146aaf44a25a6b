// services/scheduler.go
package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"stylar-exchange/metrics"
)

// StartFinalizeScheduler runs Finalize every interval until the returned
// scheduler is shut down.
func (s *ChallengeService) StartFinalizeScheduler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := s.Finalize(ctx, s.Clock.now())
			metrics.RecordJobRun("challenge_finalize", err == nil)
			if err != nil {
				s.Log.Errorf("❌ [SCHEDULER] Finalize failed: %v", err)
			}
			if n > 0 {
				s.Log.Infof("✅ [SCHEDULER] Finalized %d challenge(s)", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
