// Package jobs runs the service's background work on simple schedules.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Schedule yields the next run time after t.
type Schedule interface {
	Next(t time.Time) time.Time
}

// IntervalSchedule runs at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// Every builds an interval schedule.
func Every(interval time.Duration) Schedule {
	return &IntervalSchedule{Interval: interval}
}

// Job is a named unit of scheduled work. Run errors are logged, not fatal;
// the job stays on its schedule.
type Job struct {
	Name     string
	Schedule Schedule
	Run      func(ctx context.Context) error
}

// Scheduler drives registered jobs until its context is cancelled.
type Scheduler struct {
	logger *slog.Logger

	mu   sync.Mutex
	jobs []*Job

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a Scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// Register adds a job. Registration after Start has no effect.
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()
	s.logger.Info("job registered", "job", job.Name)
}

// Start launches one goroutine per job.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.mu.Lock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job *Job) {
			defer wg.Done()
			s.run(ctx, job)
		}(job)
	}

	go func() {
		wg.Wait()
		close(s.done)
	}()
}

// Stop cancels all jobs and waits for them to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, job *Job) {
	for {
		next := job.Schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.Error("job failed",
				"job", job.Name,
				"duration", time.Since(start).String(),
				"error", err,
			)
			continue
		}
		s.logger.Debug("job finished",
			"job", job.Name,
			"duration", time.Since(start).String(),
		)
	}
}
