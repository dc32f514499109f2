package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/masahif/seodash/internal/catalog"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert locations, keywords, competitors and content from a YAML catalog",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
	cmd.Flags().StringP("file", "f", "catalog.yml", "Catalog file")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := catalog.Load(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	store, err := openStore(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summary, err := catalog.Apply(cmd.Context(), store, doc)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d locations, %d keywords, %d competitors, %d content pieces\n",
		summary.Locations, summary.Keywords, summary.Competitors, summary.Content)
	return nil
}
