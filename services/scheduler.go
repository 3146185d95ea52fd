// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduledJob is a periodic task run by the service scheduler.
type ScheduledJob struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// RegistryRefreshJob purges the definition cache so operator edits show up.
func RegistryRefreshJob(registry *AchievementRegistry, every time.Duration) ScheduledJob {
	return ScheduledJob{
		Name:  "registry-refresh",
		Every: every,
		Run: func(context.Context) error {
			registry.Purge()
			return nil
		},
	}
}

// StartScheduler registers jobs and starts the scheduler. Jobs never overlap
// with themselves, and the scheduler is shut down when ctx is done.
func StartScheduler(ctx context.Context, jobs ...ScheduledJob) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	for _, job := range jobs {
		if job.Every <= 0 {
			log.Printf("[Scheduler] ⏭️ Skipping %s: no interval", job.Name)
			continue
		}
		job := job
		_, err := sched.NewJob(
			gocron.DurationJob(job.Every),
			gocron.NewTask(func() {
				if err := job.Run(ctx); err != nil {
					log.Printf("[Scheduler] ❌ %s failed: %v", job.Name, err)
				}
			}),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", job.Name, err)
		}
		log.Printf("[Scheduler] ✅ %s every %s", job.Name, job.Every)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[Scheduler] shutdown error: %v", err)
		}
	}()
	return sched, nil
}
