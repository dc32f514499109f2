package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/masahif/seodash/internal/collector"
	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

// setupLogging installs the default logger described by cfg
func setupLogging(cfg config.LoggingConfig) (io.Closer, error) {
	return logging.SetDefault(logging.Config{
		Level:      logging.ParseLevel(cfg.Level),
		FilePath:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		Console:    cfg.Console,
	})
}

// openStore opens the configured database, creating the SQLite directory if needed
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*storage.Store, error) {
	if cfg.Driver == storage.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

// buildProviders creates a client for every provider with credentials.
// ctx must outlive the clients; it drives Google token refreshes.
func buildProviders(ctx context.Context, cfg *config.Config) collector.Providers {
	pc := cfg.Providers
	opts := provider.Options{
		Timeout:          pc.RequestTimeout,
		UserAgent:        userAgent(pc.UserAgent),
		Limiter:          provider.NewRateLimiter(pc.RequestDelay),
		BreakerFailures:  pc.BreakerFailures,
		BreakerOpenDelay: pc.BreakerOpenDelay,
	}

	var p collector.Providers
	if pc.DataForSEO.Login != "" && pc.DataForSEO.Password != "" {
		p.Rank = provider.NewDataForSEO(pc.DataForSEO, opts)
	} else {
		slog.Warn("DataForSEO credentials missing, rankings disabled")
	}

	if pc.Fathom.APIKey != "" && pc.Fathom.SiteID != "" {
		p.Analytics = provider.NewFathom(pc.Fathom, opts)
	} else {
		slog.Warn("Fathom credentials missing, analytics disabled")
	}

	if provider.GoogleConfigured(pc.Google) {
		googleHTTP := provider.NewGoogleHTTPClient(ctx, pc.Google)
		p.BusinessProfile = provider.NewBusinessProfile(pc.BusinessProfile, opts, googleHTTP)
		if pc.SearchConsole.SiteURL != "" {
			p.SearchConsole = provider.NewSearchConsole(pc.SearchConsole, opts, googleHTTP)
		} else {
			slog.Warn("Search Console site URL missing, search console disabled")
		}
	} else {
		slog.Warn("Google OAuth credentials missing, Business Profile and Search Console disabled")
	}

	if pc.YouTube.APIKey != "" && pc.YouTube.ChannelID != "" {
		p.YouTube = provider.NewYouTube(pc.YouTube, opts)
	}
	if pc.Bunny.APIKey != "" && pc.Bunny.LibraryID != "" {
		p.Bunny = provider.NewBunny(pc.Bunny, opts)
	}

	return p
}

// buildRegistry wires the jobs for cfg
func buildRegistry(ctx context.Context, cfg *config.Config, store collector.Store) (*collector.Registry, error) {
	calendar, err := collector.NewCalendar(cfg.Site.Timezone)
	if err != nil {
		return nil, err
	}
	return collector.NewRegistry(store, buildProviders(ctx, cfg), cfg, calendar), nil
}

func userAgent(configured string) string {
	if configured != "" && configured != "seodash/1.0" {
		return configured
	}
	if version != "" && version != "dev" {
		return "seodash/" + version
	}
	return "seodash/dev"
}
