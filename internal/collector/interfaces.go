package collector

import (
	"context"
	"time"

	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

// Store is the persistence surface the jobs need
type Store interface {
	Locations(ctx context.Context) ([]storage.Location, error)
	ActiveKeywords(ctx context.Context) ([]storage.Keyword, error)
	ActiveCompetitors(ctx context.Context) ([]storage.Competitor, error)
	ContentIDBySlug(ctx context.Context, slug string) (int64, error)

	UpsertKeywordRanking(ctx context.Context, r storage.KeywordRanking) error
	UpsertCompetitorRanking(ctx context.Context, r storage.CompetitorRanking) error
	UpsertTraffic(ctx context.Context, t storage.TrafficRecord) error
	UpsertGBPMetrics(ctx context.Context, g storage.GBPRecord) error
	UpsertSearchConsoleRows(ctx context.Context, records []storage.SearchConsoleRecord) error
	UpsertVideoMetric(ctx context.Context, v storage.VideoMetric) error
}

// RankProvider fetches live SERP results
type RankProvider interface {
	FetchSerp(ctx context.Context, queries []provider.SerpQuery) ([]provider.SerpTask, error)
	BatchSize() int
}

// AnalyticsProvider serves web analytics aggregates
type AnalyticsProvider interface {
	Aggregate(ctx context.Context, req provider.AggregateRequest) (*provider.Aggregate, error)
	TopPages(ctx context.Context, from, to string) ([]provider.TopPage, error)
}

// BusinessProfileProvider serves Business Profile daily metrics
type BusinessProfileProvider interface {
	DailyMetrics(ctx context.Context, profile string, start, end time.Time, metrics []string) ([]provider.MetricSeries, error)
}

// SearchConsoleProvider serves search analytics rows
type SearchConsoleProvider interface {
	Query(ctx context.Context, date string, rowLimit int) ([]provider.SearchConsoleRow, error)
}

// YouTubeProvider serves channel videos and their statistics
type YouTubeProvider interface {
	ChannelVideoIDs(ctx context.Context) ([]string, error)
	VideoStatistics(ctx context.Context, ids []string) ([]provider.VideoStats, error)
}

// BunnyProvider lists the videos of a stream library
type BunnyProvider interface {
	ListVideos(ctx context.Context) ([]provider.BunnyVideo, error)
}
