package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/masahif/seodash/internal/trigger"
)

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect [job...]",
		Short: "Run collection jobs once",
		Long: `Run one or more collection jobs immediately, without the bearer check.

Jobs: collect-rankings, collect-fathom, collect-gbp, collect-gsc, collect-videos.
Use --all to run every job in that order.`,
		RunE: runCollect,
	}
	cmd.Flags().Bool("all", false, "Run every job")
	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if len(args) == 0 && !all {
		return errors.New("no jobs given; pass job names or --all")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
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

	names := args
	if all {
		names = registry.Names()
	}
	// Reject typos before running anything
	for _, name := range names {
		if _, ok := registry.Get(name); !ok {
			return fmt.Errorf("unknown job %q (available: %v)", name, registry.Names())
		}
	}

	runner := trigger.NewRunner()
	var failed []string
	for _, name := range names {
		job, _ := registry.Get(name)
		outcome := runner.Run(ctx, name, trigger.Job(job))
		if outcome.Err != nil {
			failed = append(failed, name)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: failed after %s: %v\n", name, outcome.Duration, outcome.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: completed in %s\n", name, outcome.Duration)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d job(s) failed: %v", len(failed), failed)
	}
	return nil
}
