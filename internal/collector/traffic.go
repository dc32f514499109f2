package collector

import (
	"context"
	"fmt"

	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/metrics"
	"github.com/masahif/seodash/internal/parser"
	"github.com/masahif/seodash/internal/provider"
)

// TrafficJob stores yesterday's sitewide and per-location analytics
type TrafficJob struct {
	store     Store
	analytics AnalyticsProvider
	cfg       *config.Config
	calendar  Calendar
}

// NewTrafficJob creates the analytics collection job
func NewTrafficJob(store Store, analytics AnalyticsProvider, cfg *config.Config, calendar Calendar) *TrafficJob {
	return &TrafficJob{store: store, analytics: analytics, cfg: cfg, calendar: calendar}
}

// Run collects the sitewide unit, then one unit per location with an
// analytics path. Each unit fails on its own.
func (j *TrafficJob) Run(ctx context.Context) error {
	log := logging.ForJob(ctx, JobFathom)
	date := j.calendar.Date(1)

	if err := j.sitewide(ctx, date); err != nil {
		metrics.RecordUnitFailure(JobFathom, "sitewide")
		log.Error("Sitewide traffic failed", "date", date, "error", err)
	} else {
		log.Info("Sitewide traffic saved", "date", date)
	}

	locations, err := j.store.Locations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load locations: %w", err)
	}
	ids := make(map[string]int64, len(locations))
	for _, l := range locations {
		ids[l.Slug] = l.ID
	}

	for _, lc := range j.cfg.Locations {
		if lc.AnalyticsPath == "" {
			continue
		}
		id, ok := ids[lc.Slug]
		if !ok {
			log.Warn("Location not in catalog", "location", lc.Slug)
			continue
		}

		if err := j.location(ctx, date, id, lc.AnalyticsPath); err != nil {
			metrics.RecordUnitFailure(JobFathom, "location")
			log.Error("Location traffic failed", "location", lc.Slug, "date", date, "error", err)
			continue
		}
		log.Info("Location traffic saved", "location", lc.Slug, "date", date)
	}

	return nil
}

func (j *TrafficJob) sitewide(ctx context.Context, date string) error {
	agg, err := j.analytics.Aggregate(ctx, provider.AggregateRequest{From: date, To: date})
	if err != nil {
		return err
	}
	top, err := j.analytics.TopPages(ctx, date, date)
	if err != nil {
		return err
	}

	if err := j.store.UpsertTraffic(ctx, parser.TrafficRecord(date, nil, *agg, top)); err != nil {
		return err
	}
	metrics.RecordUpsert("traffic_data", 1)
	return nil
}

func (j *TrafficJob) location(ctx context.Context, date string, locationID int64, path string) error {
	agg, err := j.analytics.Aggregate(ctx, provider.AggregateRequest{From: date, To: date, PathPrefix: path})
	if err != nil {
		return err
	}

	if err := j.store.UpsertTraffic(ctx, parser.TrafficRecord(date, &locationID, *agg, nil)); err != nil {
		return err
	}
	metrics.RecordUpsert("traffic_data", 1)
	return nil
}
