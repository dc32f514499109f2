// Package trigger runs collection jobs on behalf of the HTTP endpoint, the
// in-process scheduler and the CLI.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/metrics"
)

// Job runs one collection pass
type Job func(ctx context.Context) error

// Outcome is the result of one job run
type Outcome struct {
	Duration time.Duration
	Err      error
}

// Runner times a job, logs its start and finish and records job metrics.
// It never retries.
type Runner struct {
	now func() time.Time
}

// NewRunner creates a runner using the wall clock
func NewRunner() *Runner {
	return &Runner{now: time.Now}
}

// Run executes job once. A panic inside the job is returned as an error.
func (r *Runner) Run(ctx context.Context, name string, job Job) Outcome {
	log := logging.ForJob(ctx, name)
	log.Info("Job started")

	start := r.now()
	err := safeRun(ctx, job)
	duration := r.now().Sub(start)

	metrics.RecordJob(name, duration, err)
	if err != nil {
		log.Error("Job failed", "duration_ms", duration.Milliseconds(), "error", err)
	} else {
		log.Info("Job completed", "duration_ms", duration.Milliseconds())
	}

	return Outcome{Duration: duration, Err: err}
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return job(ctx)
}
