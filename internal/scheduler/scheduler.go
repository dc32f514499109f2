// Package scheduler runs collection jobs on cron specs inside the server process.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/masahif/seodash/internal/collector"
	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/trigger"
)

// Entry binds a job name to its cron spec
type Entry struct {
	Job  string
	Spec string
}

// Entries lists the configured schedules; jobs with an empty spec are omitted
func Entries(cfg config.ScheduleConfig) []Entry {
	all := []Entry{
		{Job: collector.JobRankings, Spec: cfg.Rankings},
		{Job: collector.JobFathom, Spec: cfg.Fathom},
		{Job: collector.JobGBP, Spec: cfg.GBP},
		{Job: collector.JobSearchConsole, Spec: cfg.SearchConsole},
		{Job: collector.JobVideos, Spec: cfg.Videos},
	}

	entries := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Spec != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// Scheduler wraps a cron instance whose jobs go through a trigger.Runner
type Scheduler struct {
	cron   *cron.Cron
	runner *trigger.Runner
	logger *slog.Logger
}

// New creates a stopped scheduler evaluating specs in loc
func New(loc *time.Location, runner *trigger.Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		logger: logger,
	}
}

// Add registers job under name
func (s *Scheduler) Add(spec, name string, job trigger.Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := logging.WithContext(context.Background(), s.logger.With("trigger", "schedule"))
		s.runner.Run(ctx, name, job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.logger.Info("Job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs up to ctx's deadline
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduled jobs still running at shutdown")
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
