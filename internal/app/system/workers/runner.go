// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/sidequest/internal/app/system/tasks"
	"github.com/dalemusser/sidequest/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Runner runs each job on its own ticker until stopped.
type Runner struct {
	jobs    []tasks.Job
	log     *zap.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewRunner creates a runner for jobs. Jobs with a non-positive interval
// are skipped.
func NewRunner(logger *zap.Logger, jobs ...tasks.Job) *Runner {
	return &Runner{
		jobs:   jobs,
		log:    logger,
		stopCh: make(chan struct{}),
	}
}

// Start launches one goroutine per job. Calling Start twice is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true

	for _, job := range r.jobs {
		if job.Interval <= 0 || job.Run == nil {
			r.log.Warn("background job disabled", zap.String("job", job.Name))
			continue
		}
		r.wg.Add(1)
		go r.loop(job)
		r.log.Info("background job started",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval))
	}
}

// Stop signals every job to stop and waits for in-flight runs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
	r.log.Info("background jobs stopped")
}

func (r *Runner) loop(job tasks.Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce(job)
		}
	}
}

func (r *Runner) runOnce(job tasks.Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = timeouts.Long()
	}
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeout, r.log, job.Name)
	defer cancel()

	// Stop cancels a run in progress.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-done:
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		r.log.Error("background job failed",
			zap.String("job", job.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}
}

// RunNow runs every job once, synchronously. Used by the CLI.
func (r *Runner) RunNow(ctx context.Context) error {
	for _, job := range r.jobs {
		if job.Run == nil {
			continue
		}
		if err := job.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
