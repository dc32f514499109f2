package collector

import (
	"context"
	"fmt"

	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/metrics"
	"github.com/masahif/seodash/internal/parser"
)

const (
	defaultSearchConsoleLag      = 3
	defaultSearchConsoleRowLimit = 1000
)

// SearchConsoleJob stores the (query, page) rows of the most recent reported day
type SearchConsoleJob struct {
	store    Store
	console  SearchConsoleProvider
	cfg      *config.Config
	calendar Calendar
}

// NewSearchConsoleJob creates the search console collection job
func NewSearchConsoleJob(store Store, console SearchConsoleProvider, cfg *config.Config, calendar Calendar) *SearchConsoleJob {
	return &SearchConsoleJob{store: store, console: console, cfg: cfg, calendar: calendar}
}

// Run fetches and stores one day of rows. Any failure fails the job.
func (j *SearchConsoleJob) Run(ctx context.Context) error {
	log := logging.ForJob(ctx, JobSearchConsole)

	lag := j.cfg.Providers.SearchConsole.LagDays
	if lag <= 0 {
		lag = defaultSearchConsoleLag
	}
	limit := j.cfg.Providers.SearchConsole.RowLimit
	if limit <= 0 {
		limit = defaultSearchConsoleRowLimit
	}
	date := j.calendar.Date(lag)

	patterns, err := j.patterns(ctx)
	if err != nil {
		return err
	}

	rows, err := j.console.Query(ctx, date, limit)
	if err != nil {
		return fmt.Errorf("failed to query search console for %s: %w", date, err)
	}

	records := parser.SearchConsoleRecords(date, rows, patterns)
	if err := j.store.UpsertSearchConsoleRows(ctx, records); err != nil {
		return fmt.Errorf("failed to store search console rows: %w", err)
	}
	metrics.RecordUpsert("search_console_data", len(records))

	var attributed int
	for _, r := range records {
		if r.LocationID != nil {
			attributed++
		}
	}
	log.Info("Search console rows collected", "date", date, "rows", len(records), "attributed", attributed)
	return nil
}

// patterns keeps configuration order so the first matching location wins
func (j *SearchConsoleJob) patterns(ctx context.Context) ([]parser.PagePattern, error) {
	locations, err := j.store.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	ids := make(map[string]int64, len(locations))
	for _, l := range locations {
		ids[l.Slug] = l.ID
	}

	var patterns []parser.PagePattern
	for _, lc := range j.cfg.Locations {
		id, ok := ids[lc.Slug]
		if !ok || lc.SearchConsolePattern == "" {
			continue
		}
		patterns = append(patterns, parser.PagePattern{Pattern: lc.SearchConsolePattern, LocationID: id})
	}
	return patterns, nil
}
