// Package collector implements the scheduled data collection jobs. Each job
// reads the catalog, calls one or more providers and writes normalized rows
// through idempotent upserts.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/masahif/seodash/internal/config"
)

// Job names, as exposed on /api/cron/{job}
const (
	JobRankings      = "collect-rankings"
	JobFathom        = "collect-fathom"
	JobGBP           = "collect-gbp"
	JobSearchConsole = "collect-gsc"
	JobVideos        = "collect-videos"
)

// ErrNotConfigured is returned by a job whose provider has no credentials
var ErrNotConfigured = errors.New("provider not configured")

// Job runs one collection pass
type Job func(ctx context.Context) error

// Providers holds the provider clients. A nil field means not configured.
type Providers struct {
	Rank            RankProvider
	Analytics       AnalyticsProvider
	BusinessProfile BusinessProfileProvider
	SearchConsole   SearchConsoleProvider
	YouTube         YouTubeProvider
	Bunny           BunnyProvider
}

// Registry maps job names to runnable jobs
type Registry struct {
	names []string
	jobs  map[string]Job
}

// NewRegistry wires every job to the store and providers
func NewRegistry(store Store, p Providers, cfg *config.Config, calendar Calendar) *Registry {
	r := &Registry{jobs: make(map[string]Job)}

	r.add(JobRankings, "dataforseo", p.Rank != nil, func() Job {
		return NewRankingJob(store, p.Rank, cfg, calendar).Run
	})
	r.add(JobFathom, "fathom", p.Analytics != nil, func() Job {
		return NewTrafficJob(store, p.Analytics, cfg, calendar).Run
	})
	r.add(JobGBP, "google business profile", p.BusinessProfile != nil, func() Job {
		return NewGBPJob(store, p.BusinessProfile, cfg, calendar).Run
	})
	r.add(JobSearchConsole, "google search console", p.SearchConsole != nil, func() Job {
		return NewSearchConsoleJob(store, p.SearchConsole, cfg, calendar).Run
	})
	// Platforms are optional individually
	r.add(JobVideos, "", true, func() Job {
		return NewVideoJob(store, p.YouTube, p.Bunny, calendar).Run
	})

	return r
}

func (r *Registry) add(name, providerName string, configured bool, build func() Job) {
	r.names = append(r.names, name)
	if configured {
		r.jobs[name] = build()
		return
	}
	r.jobs[name] = func(context.Context) error {
		return fmt.Errorf("%s: %w", providerName, ErrNotConfigured)
	}
}

// Get returns the named job
func (r *Registry) Get(name string) (Job, bool) {
	job, ok := r.jobs[name]
	return job, ok
}

// Names lists the jobs in registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
