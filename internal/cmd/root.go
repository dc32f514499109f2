// Package cmd provides the command-line interface for seodash.
// It handles command parsing, configuration loading and wiring of the
// collection jobs, the trigger server and the scheduler.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/storage"
)

var (
	cfgFile   string
	envFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seodash",
	Short: "SEO analytics data collection for multi-location sites",
	Long: `seodash collects daily search rankings, web analytics, Business Profile,
Search Console and video metrics for a multi-location website and stores
them for dashboards.

Collection jobs are triggered over HTTP by an external scheduler
(seodash serve), by the built-in scheduler (seodash serve --schedule)
or manually (seodash collect).`,
	SilenceUsage: true,
}

// Legacy environment names accepted alongside SEODASH_* variables
var legacyEnv = map[string]string{
	"server.cron_secret":                "CRON_SECRET",
	"database.dsn":                      "DATABASE_URL",
	"providers.dataforseo.login":        "DATAFORSEO_LOGIN",
	"providers.dataforseo.password":     "DATAFORSEO_PASSWORD",
	"providers.fathom.api_key":          "FATHOM_API_KEY",
	"providers.fathom.site_id":          "FATHOM_SITE_ID",
	"providers.google.client_id":        "GOOGLE_CLIENT_ID",
	"providers.google.client_secret":    "GOOGLE_CLIENT_SECRET",
	"providers.google.refresh_token":    "GOOGLE_REFRESH_TOKEN",
	"providers.search_console.site_url": "GSC_SITE_URL",
	"providers.youtube.api_key":         "YOUTUBE_API_KEY",
	"providers.youtube.channel_id":      "YOUTUBE_CHANNEL_ID",
	"providers.bunny.api_key":           "BUNNY_API_KEY",
	"providers.bunny.library_id":        "BUNNY_LIBRARY_ID",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./seodash.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db-driver", storage.DriverSQLite, "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("db", "./seodash.db", "SQLite file path or PostgreSQL connection URL")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"logging.level", "log-level"},
		{"database.driver", "db-driver"},
		{"database.dsn", "db"},
	}
	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.PersistentFlags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}

	rootCmd.AddCommand(newServeCmd(), newCollectCmd(), newSeedCmd(), newConfigCmd())
}

// initConfig reads in the dotenv file, the config file and ENV variables.
func initConfig() {
	if envFile != "" {
		// A missing .env file is normal in production
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", envFile, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("seodash")
	}

	viper.SetEnvPrefix("SEODASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := registerDefaults(config.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to register defaults: %v\n", err)
	}
	for key, legacy := range legacyEnv {
		envKey := "SEODASH_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		_ = viper.BindEnv(key, envKey, legacy)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so environment
// variables can override keys absent from the config file.
func registerDefaults(cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, v := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := v.(map[string]any); ok {
				walk(key, child)
				continue
			}
			viper.SetDefault(key, v)
		}
	}
	walk("", tree)
	return nil
}

// loadConfig builds the effective configuration
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	// Locations come whole from one source; defaults are registered with viper
	cfg.Locations = nil
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// DATABASE_URL alone selects PostgreSQL
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == storage.DriverSQLite &&
		(strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")) {
		cfg.Database.Driver = storage.DriverPostgres
	}

	return cfg, nil
}
