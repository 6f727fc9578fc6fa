// Package scheduler runs the controller's recurring jobs (device
// polling, housekeeping) on a coarse ticker.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type Scheduler struct {
	tick time.Duration
	jobs []*Job
}

func New() *Scheduler {
	return &Scheduler{
		tick: time.Second,
		jobs: make([]*Job, 0),
	}
}

// WithTick overrides the scheduling granularity. Mostly for tests.
func (scheduler *Scheduler) WithTick(tick time.Duration) *Scheduler {
	scheduler.tick = tick
	return scheduler
}

func (scheduler *Scheduler) AddJob(job *Job) {
	scheduler.jobs = append(scheduler.jobs, job)
}

type Job struct {
	name          string
	run           func(ctx context.Context) error
	interval      time.Duration
	nextExecuteAt time.Time
}

func NewJob(name string, run func(ctx context.Context) error) *Job {
	return &Job{name: name, run: run}
}

func (job *Job) WithInterval(interval time.Duration) *Job {
	job.interval = interval
	return job
}

func (job *Job) WithExecuteAt(executeAt time.Time) *Job {
	job.nextExecuteAt = executeAt
	return job
}

// Run drives all registered jobs until ctx is cancelled. Each due job
// executes asynchronously; a failing job is logged and rescheduled, it
// never stops the loop.
func (scheduler *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(scheduler.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()

			for _, job := range scheduler.jobs {
				if job.nextExecuteAt.After(now) {
					continue
				}

				job.nextExecuteAt = now.Add(job.interval)

				go func(job *Job) {
					if err := job.run(ctx); err != nil {
						slog.Error("job failed", "job", job.name, "error", err)
					}
				}(job)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
