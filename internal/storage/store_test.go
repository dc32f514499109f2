package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test_seodash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type seeded struct {
	manhattan    int64
	statenIsland int64
	keyword      int64
	competitor   int64
}

func seedCatalog(t *testing.T, store *Store) seeded {
	t.Helper()
	ctx := context.Background()

	var s seeded
	var err error
	s.manhattan, err = store.UpsertLocation(ctx, Location{Slug: "manhattan", Name: "Manhattan", GBPLocationID: "locations/111"})
	require.NoError(t, err)
	s.statenIsland, err = store.UpsertLocation(ctx, Location{Slug: "staten-island", Name: "Staten Island"})
	require.NoError(t, err)

	s.keyword, err = store.UpsertKeyword(ctx, Keyword{
		Keyword:    "elder law attorney manhattan",
		LocationID: s.manhattan,
		Category:   "elder-law-general",
		IsPrimary:  true,
		IsActive:   true,
	})
	require.NoError(t, err)

	_, err = store.UpsertKeyword(ctx, Keyword{
		Keyword:    "probate lawyer staten island",
		LocationID: s.statenIsland,
		Category:   "probate",
		IsActive:   false,
	})
	require.NoError(t, err)

	s.competitor, err = store.UpsertCompetitor(ctx, Competitor{Name: "Rival", Domain: "rival.com", LocationID: s.manhattan, IsActive: true})
	require.NoError(t, err)
	_, err = store.UpsertCompetitor(ctx, Competitor{Name: "Retired", Domain: "old.com", LocationID: s.manhattan, IsActive: false})
	require.NoError(t, err)

	return s
}

func intp(v int) *int { return &v }

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	require.Error(t, err)
}

func TestCatalogReads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedCatalog(t, store)

	t.Run("ActiveKeywords", func(t *testing.T) {
		keywords, err := store.ActiveKeywords(ctx)
		require.NoError(t, err)
		require.Len(t, keywords, 1)
		require.Equal(t, "elder law attorney manhattan", keywords[0].Keyword)
		require.Equal(t, "manhattan", keywords[0].LocationSlug)
		require.True(t, keywords[0].IsPrimary)
		require.Nil(t, keywords[0].TargetPosition)
	})

	t.Run("ActiveCompetitors", func(t *testing.T) {
		competitors, err := store.ActiveCompetitors(ctx)
		require.NoError(t, err)
		require.Len(t, competitors, 1)
		require.Equal(t, "rival.com", competitors[0].Domain)
	})

	t.Run("LocationBySlug", func(t *testing.T) {
		loc, err := store.LocationBySlug(ctx, "manhattan")
		require.NoError(t, err)
		require.Equal(t, ids.manhattan, loc.ID)
		require.Equal(t, "locations/111", loc.GBPLocationID)

		_, err = store.LocationBySlug(ctx, "brooklyn")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpsertLocationIsIdempotent", func(t *testing.T) {
		id, err := store.UpsertLocation(ctx, Location{Slug: "manhattan", Name: "Manhattan Office"})
		require.NoError(t, err)
		require.Equal(t, ids.manhattan, id)

		locations, err := store.Locations(ctx)
		require.NoError(t, err)
		require.Len(t, locations, 2)
		require.Equal(t, "Manhattan Office", locations[0].Name)
		require.Empty(t, locations[0].GBPLocationID)
	})

	t.Run("ContentIDBySlug", func(t *testing.T) {
		id, err := store.UpsertContentPiece(ctx, ContentPiece{Title: "Medicaid explained", Slug: "dQw4w9WgXcQ", URL: "https://youtu.be/dQw4w9WgXcQ", Type: "video"})
		require.NoError(t, err)

		got, err := store.ContentIDBySlug(ctx, "dQw4w9WgXcQ")
		require.NoError(t, err)
		require.Equal(t, id, got)

		_, err = store.ContentIDBySlug(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpsertKeywordRanking_PreviousPositionSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedCatalog(t, store)

	record := func(date string, pos *int) {
		require.NoError(t, store.UpsertKeywordRanking(ctx, KeywordRanking{
			KeywordID:    ids.keyword,
			LocationID:   ids.manhattan,
			RecordedDate: date,
			Position:     pos,
			URL:          "https://muchnikelderlaw.com/manhattan/",
		}))
	}

	record("2024-05-01", intp(5))
	first, err := store.KeywordRanking(ctx, ids.keyword, "2024-05-01")
	require.NoError(t, err)
	require.Nil(t, first.PreviousPosition)

	record("2024-05-02", intp(3))
	second, err := store.KeywordRanking(ctx, ids.keyword, "2024-05-02")
	require.NoError(t, err)
	require.Equal(t, 3, *second.Position)
	require.Equal(t, 5, *second.PreviousPosition)

	// Same-day rerun keeps the prior day's position as previous
	record("2024-05-02", intp(4))
	rerun, err := store.KeywordRanking(ctx, ids.keyword, "2024-05-02")
	require.NoError(t, err)
	require.Equal(t, 4, *rerun.Position)
	require.Equal(t, 5, *rerun.PreviousPosition)

	// Not ranking today records NULL position
	record("2024-05-03", nil)
	third, err := store.KeywordRanking(ctx, ids.keyword, "2024-05-03")
	require.NoError(t, err)
	require.Nil(t, third.Position)
	require.Equal(t, 4, *third.PreviousPosition)

	n, err := store.CountRows(ctx, "keyword_rankings")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestUpsertCompetitorRanking_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedCatalog(t, store)

	for _, pos := range []int{7, 6} {
		require.NoError(t, store.UpsertCompetitorRanking(ctx, CompetitorRanking{
			CompetitorID: ids.competitor,
			KeywordID:    ids.keyword,
			RecordedDate: "2024-05-01",
			Position:     intp(pos),
			URL:          "https://rival.com/",
		}))
	}

	rankings, err := store.CompetitorRankings(ctx, ids.keyword, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	require.Equal(t, 6, *rankings[0].Position)
	require.Nil(t, rankings[0].LocalPackPosition)
}

func TestUpsertTraffic_SitewideAndLocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedCatalog(t, store)
	bounce := 0.42

	sitewide := TrafficRecord{
		RecordedDate:   "2024-05-01",
		Pageviews:      120,
		Visits:         100,
		UniqueVisitors: 80,
		BounceRate:     &bounce,
		TopPages:       []TopPage{{Path: "/manhattan", Visits: 40}},
	}
	require.NoError(t, store.UpsertTraffic(ctx, sitewide))

	// Rerun without top pages updates counters and keeps stored top pages
	sitewide.Visits = 110
	sitewide.TopPages = nil
	require.NoError(t, store.UpsertTraffic(ctx, sitewide))

	require.NoError(t, store.UpsertTraffic(ctx, TrafficRecord{
		RecordedDate: "2024-05-01",
		LocationID:   &ids.manhattan,
		Visits:       40,
	}))
	require.NoError(t, store.UpsertTraffic(ctx, TrafficRecord{
		RecordedDate: "2024-05-01",
		LocationID:   &ids.manhattan,
		Visits:       41,
	}))

	rows, err := store.Traffic(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Nil(t, rows[0].LocationID)
	require.EqualValues(t, 110, rows[0].Visits)
	require.Equal(t, []TopPage{{Path: "/manhattan", Visits: 40}}, rows[0].TopPages)
	require.InDelta(t, 0.42, *rows[0].BounceRate, 0.0001)

	require.Equal(t, ids.manhattan, *rows[1].LocationID)
	require.EqualValues(t, 41, rows[1].Visits)
	require.Nil(t, rows[1].TopPages)
}

func TestUpsertGBPMetrics_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedCatalog(t, store)

	rec := GBPRecord{LocationID: ids.manhattan, RecordedDate: "2024-05-01", SearchesDirect: 3, SearchesTotal: 3}
	require.NoError(t, store.UpsertGBPMetrics(ctx, rec))
	rec.ActionsPhone = 2
	rec.ActionsTotal = 2
	require.NoError(t, store.UpsertGBPMetrics(ctx, rec))

	got, err := store.GBPMetrics(ctx, ids.manhattan, "2024-05-01")
	require.NoError(t, err)
	require.EqualValues(t, 2, got.ActionsPhone)

	n, err := store.CountRows(ctx, "gbp_metrics")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestUpsertSearchConsoleRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := seedCatalog(t, store)

	batch := []SearchConsoleRecord{
		{RecordedDate: "2024-05-01", Query: "elder law", Page: "https://muchnikelderlaw.com/manhattan/", LocationID: &ids.manhattan, Clicks: 4, Impressions: 100, CTR: 0.04, Position: 6.2},
		{RecordedDate: "2024-05-01", Query: "elder law", Page: "https://muchnikelderlaw.com/blog/", Clicks: 1, Impressions: 20, CTR: 0.05, Position: 12},
	}
	require.NoError(t, store.UpsertSearchConsoleRows(ctx, batch))
	require.NoError(t, store.UpsertSearchConsoleRows(ctx, batch))
	require.NoError(t, store.UpsertSearchConsoleRows(ctx, nil))

	rows, err := store.SearchConsoleRows(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Nil(t, rows[0].LocationID)
	require.Equal(t, ids.manhattan, *rows[1].LocationID)
}

func TestUpsertVideoMetric_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	watch := 31.5
	metric := VideoMetric{Platform: PlatformBunny, ExternalID: "guid-1", RecordedDate: "2024-05-01", Views: 10, AvgViewDuration: &watch}
	require.NoError(t, store.UpsertVideoMetric(ctx, metric))
	metric.Views = 12
	require.NoError(t, store.UpsertVideoMetric(ctx, metric))

	rows, err := store.VideoMetrics(ctx, PlatformBunny, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.EqualValues(t, 12, rows[0].Views)
	require.Nil(t, rows[0].ContentID)
	require.InDelta(t, 31.5, *rows[0].AvgViewDuration, 0.0001)
}

func TestRebindDollar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"WHERE a = ? AND b = ?", "WHERE a = $1 AND b = $2"},
		{"WHERE a = '?' AND b = ?", "WHERE a = '?' AND b = $1"},
	}
	for _, tt := range tests {
		if got := rebindDollar(tt.in); got != tt.want {
			t.Errorf("rebindDollar(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountRowsRejectsUnknownTable(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CountRows(context.Background(), "locations; DROP TABLE x")
	require.Error(t, err)
}
