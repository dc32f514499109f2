package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/masahif/seodash/internal/scheduler"
	"github.com/masahif/seodash/internal/server"
	"github.com/masahif/seodash/internal/trigger"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cron trigger endpoints",
		Long: `Serve GET /api/cron/{job} for an external scheduler, plus /healthz and /metrics.

Requests must carry "Authorization: Bearer <cron secret>". With --schedule the
jobs also run in-process on the configured cron specs.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Bool("schedule", false, "Also run jobs on the built-in scheduler")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("schedule.enabled", cmd.Flags().Lookup("schedule"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := setupLogging(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	registry, err := buildRegistry(ctx, cfg, store)
	if err != nil {
		return err
	}

	runner := trigger.NewRunner()

	if cfg.Schedule.Enabled {
		loc, err := time.LoadLocation(cfg.Site.Timezone)
		if err != nil {
			return err
		}
		sched := scheduler.New(loc, runner, slog.Default())
		for _, e := range scheduler.Entries(cfg.Schedule) {
			job, ok := registry.Get(e.Job)
			if !ok {
				return fmt.Errorf("unknown scheduled job %q", e.Job)
			}
			if err := sched.Add(e.Spec, e.Job, trigger.Job(job)); err != nil {
				return err
			}
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	gate := trigger.NewGate(cfg.GetCronSecret(), runner)
	slog.Info("Starting seodash",
		"version", version,
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Driver,
		"jobs", registry.Names(),
		"schedule", cfg.Schedule.Enabled)

	return server.New(cfg.Server, gate, registry, store).Run(ctx)
}
