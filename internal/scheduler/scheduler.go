package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named periodic task. Errors are logged; the schedule keeps running.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs jobs on cron specs. A job whose previous run is still in
// flight is skipped rather than stacked.
type Scheduler struct {
	cron    *cron.Cron
	logger  *log.Logger
	timeout time.Duration
	jobs    []Job
	ctx     context.Context
	cancel  context.CancelFunc
}

// New builds a scheduler. Each run gets a context bounded by timeout.
func New(logger *log.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cronLogger := cron.PrintfLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job on spec (standard five-field cron or descriptors such as
// "@every 30s").
func (s *Scheduler) Add(spec string, job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no run func", job.Name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %q on %q: %w", job.Name, spec, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// RunAll runs every registered job once, synchronously.
func (s *Scheduler) RunAll() {
	for _, job := range s.jobs {
		s.run(job)
	}
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Printf("scheduler: job=%s error=%v", job.Name, err)
		return
	}
	s.logger.Printf("scheduler: job=%s took=%s", job.Name, time.Since(start).Truncate(time.Millisecond))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling, cancels running jobs and waits for them to return or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
