package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/masahif/seodash/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration in YAML format with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return showCurrentConfig(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
		},
	}
}

func showCurrentConfig(out, errOut io.Writer, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "Warning: Configuration validation failed: %v\n", err)
		fmt.Fprintf(errOut, "Displaying configuration anyway...\n\n")
	}

	yamlData, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Fprintf(out, "# Current seodash configuration\n")
	fmt.Fprintf(out, "# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(out, "# Configuration file search paths: ./seodash.yml\n")
	fmt.Fprintf(out, "# Environment variables prefix: SEODASH_\n\n")

	fmt.Fprint(out, string(yamlData))

	fmt.Fprintf(out, "\n# Configuration source priority:\n")
	fmt.Fprintf(out, "# 1. Command-line arguments (highest priority)\n")
	fmt.Fprintf(out, "# 2. Environment variables (SEODASH_ prefix, legacy names such as CRON_SECRET)\n")
	fmt.Fprintf(out, "# 3. .env file\n")
	fmt.Fprintf(out, "# 4. Configuration file (seodash.yml)\n")
	fmt.Fprintf(out, "# 5. Default values (lowest priority)\n")

	return nil
}
