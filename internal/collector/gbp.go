package collector

import (
	"context"
	"fmt"

	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/metrics"
	"github.com/masahif/seodash/internal/parser"
	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

// GBPJob stores yesterday's Business Profile metrics per location
type GBPJob struct {
	store    Store
	profiles BusinessProfileProvider
	cfg      *config.Config
	calendar Calendar
}

// NewGBPJob creates the Business Profile collection job
func NewGBPJob(store Store, profiles BusinessProfileProvider, cfg *config.Config, calendar Calendar) *GBPJob {
	return &GBPJob{store: store, profiles: profiles, cfg: cfg, calendar: calendar}
}

// Run collects every location that has a profile id. Locations fail independently.
func (j *GBPJob) Run(ctx context.Context) error {
	log := logging.ForJob(ctx, JobGBP)

	locations, err := j.store.Locations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load locations: %w", err)
	}

	day := j.calendar.Day(1)
	date := j.calendar.Date(1)

	var saved int
	for _, loc := range locations {
		profile := j.profileID(loc)
		if profile == "" {
			log.Debug("No Business Profile for location", "location", loc.Slug)
			continue
		}

		series, err := j.profiles.DailyMetrics(ctx, profile, day, day, provider.GBPDailyMetrics)
		if err == nil {
			err = j.store.UpsertGBPMetrics(ctx, parser.ReduceGBPMetrics(loc.ID, date, series))
		}
		if err != nil {
			metrics.RecordUnitFailure(JobGBP, "location")
			log.Error("Business Profile metrics failed", "location", loc.Slug, "date", date, "error", err)
			continue
		}

		metrics.RecordUpsert("gbp_metrics", 1)
		saved++
	}

	log.Info("Business Profile metrics collected", "date", date, "locations", saved)
	return nil
}

// profileID prefers the catalog value over configuration
func (j *GBPJob) profileID(loc storage.Location) string {
	if loc.GBPLocationID != "" {
		return loc.GBPLocationID
	}
	if lc, ok := j.cfg.Location(loc.Slug); ok {
		return lc.GBPProfile
	}
	return ""
}
