package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/akshith-07/fitflow-pro/internal/clock"
	"github.com/akshith-07/fitflow-pro/internal/logger"
	"github.com/akshith-07/fitflow-pro/internal/metrics"
)

var ErrUnknownJob = errors.New("unknown job")

// JobFunc is a scheduled entry point. It returns how many records it
// touched; every entry point must be idempotent so a rerun after a missed or
// duplicated tick is harmless.
type JobFunc func(ctx context.Context) (int, error)

// Job describes one recurring task. Cadence is either an interval (Every) or
// a daily UTC hour (AtHour, used when Every is zero).
type Job struct {
	Name   string
	Every  time.Duration
	AtHour int
	Run    JobFunc
}

// Runner drives the job list off a ticker. There is no cron expression
// parsing on purpose; the whole schedule is this explicit list.
type Runner struct {
	jobs  []Job
	clock clock.Clock

	mu      sync.Mutex
	lastRun map[string]time.Time

	stop chan struct{}
	done chan struct{}
}

func New(clk clock.Clock, jobs ...Job) *Runner {
	return &Runner{
		jobs:    jobs,
		clock:   clk,
		lastRun: make(map[string]time.Time),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the ticker loop. It returns immediately.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		defer close(r.done)

		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		logger.Info("Scheduler started", "jobs", len(r.jobs))

		for {
			select {
			case <-ticker.C:
				r.Tick(ctx, r.clock.Now())
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the ticker loop and waits for it to exit. In-flight jobs run to
// completion.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
}

// Tick runs every job that is due at now.
func (r *Runner) Tick(ctx context.Context, now time.Time) {
	for _, job := range r.jobs {
		if r.claim(job, now) {
			r.execute(ctx, job)
		}
	}
}

// RunJob triggers a single job by name, outside its schedule.
func (r *Runner) RunJob(ctx context.Context, name string) (int, error) {
	for _, job := range r.jobs {
		if job.Name == name {
			r.markRun(job.Name, r.clock.Now())
			return job.Run(ctx)
		}
	}
	return 0, ErrUnknownJob
}

// JobNames lists the configured jobs, for the admin API.
func (r *Runner) JobNames() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name)
	}
	return names
}

// claim decides whether the job is due and records the run time when it is.
func (r *Runner) claim(job Job, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, ran := r.lastRun[job.Name]

	if job.Every > 0 {
		if ran && now.Sub(last) < job.Every {
			return false
		}
	} else {
		if now.UTC().Hour() != job.AtHour {
			return false
		}
		if ran && sameDay(last, now) {
			return false
		}
	}

	r.lastRun[job.Name] = now
	return true
}

func (r *Runner) markRun(name string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRun[name] = now
}

func (r *Runner) execute(ctx context.Context, job Job) {
	started := time.Now()

	n, err := job.Run(ctx)
	if err != nil {
		metrics.RecordJobRun(job.Name, "error")
		logger.Error("Scheduled job failed", "job", job.Name, "err", err)
		return
	}

	metrics.RecordJobRun(job.Name, "success")
	logger.Info("Scheduled job finished",
		"job", job.Name, "records", n, "duration", time.Since(started).Round(time.Millisecond))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
