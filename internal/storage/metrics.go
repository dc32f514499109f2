package storage

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// UpsertKeywordRanking records today's ranking for a keyword.
// previous_position is the position of the latest row dated strictly before
// RecordedDate, read inside the same statement, so a same-day rerun keeps
// the prior day's value instead of copying its own.
func (s *Store) UpsertKeywordRanking(ctx context.Context, r KeywordRanking) error {
	_, err := s.exec(ctx, `
		INSERT INTO keyword_rankings (keyword_id, location_id, recorded_date, position,
			previous_position, url, local_pack_position, featured_snippet)
		VALUES (?, ?, ?, ?, (
			SELECT prev.position FROM keyword_rankings prev
			WHERE prev.keyword_id = ? AND prev.recorded_date < ?
			ORDER BY prev.recorded_date DESC
			LIMIT 1
		), ?, ?, ?)
		ON CONFLICT (keyword_id, recorded_date) DO UPDATE SET
			location_id = excluded.location_id,
			position = excluded.position,
			previous_position = excluded.previous_position,
			url = excluded.url,
			local_pack_position = excluded.local_pack_position,
			featured_snippet = excluded.featured_snippet
	`, r.KeywordID, r.LocationID, r.RecordedDate, nullInt(r.Position),
		r.KeywordID, r.RecordedDate,
		nullString(r.URL), nullInt(r.LocalPackPosition), r.FeaturedSnippet)
	if err != nil {
		return fmt.Errorf("failed to upsert keyword ranking %d on %s: %w", r.KeywordID, r.RecordedDate, err)
	}
	return nil
}

// UpsertCompetitorRanking records a competitor's ranking for one keyword
func (s *Store) UpsertCompetitorRanking(ctx context.Context, r CompetitorRanking) error {
	_, err := s.exec(ctx, `
		INSERT INTO competitor_rankings (competitor_id, keyword_id, recorded_date, position,
			url, local_pack_position)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (competitor_id, keyword_id, recorded_date) DO UPDATE SET
			position = excluded.position,
			url = excluded.url,
			local_pack_position = excluded.local_pack_position
	`, r.CompetitorID, r.KeywordID, r.RecordedDate, nullInt(r.Position),
		nullString(r.URL), nullInt(r.LocalPackPosition))
	if err != nil {
		return fmt.Errorf("failed to upsert competitor ranking %d/%d on %s: %w",
			r.CompetitorID, r.KeywordID, r.RecordedDate, err)
	}
	return nil
}

// UpsertTraffic records one day of analytics for a location, or sitewide when LocationID is nil.
// A nil TopPages leaves any stored top pages untouched.
func (s *Store) UpsertTraffic(ctx context.Context, t TrafficRecord) error {
	var topPages any
	if t.TopPages != nil {
		encoded, err := json.Marshal(t.TopPages)
		if err != nil {
			return fmt.Errorf("failed to marshal top pages: %w", err)
		}
		topPages = string(encoded)
	}

	_, err := s.exec(ctx, `
		INSERT INTO traffic_data (recorded_date, location_id, pageviews, visits,
			unique_visitors, avg_duration, bounce_rate, top_pages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (recorded_date, (COALESCE(location_id, 0))) DO UPDATE SET
			pageviews = excluded.pageviews,
			visits = excluded.visits,
			unique_visitors = excluded.unique_visitors,
			avg_duration = excluded.avg_duration,
			bounce_rate = excluded.bounce_rate,
			top_pages = COALESCE(excluded.top_pages, traffic_data.top_pages)
	`, t.RecordedDate, nullInt64(t.LocationID), t.Pageviews, t.Visits, t.UniqueVisitors,
		nullFloat(t.AvgDuration), nullFloat(t.BounceRate), topPages)
	if err != nil {
		return fmt.Errorf("failed to upsert traffic on %s: %w", t.RecordedDate, err)
	}
	return nil
}

// UpsertGBPMetrics records one day of Business Profile metrics
func (s *Store) UpsertGBPMetrics(ctx context.Context, g GBPRecord) error {
	_, err := s.exec(ctx, `
		INSERT INTO gbp_metrics (location_id, recorded_date, searches_direct,
			searches_discovery, searches_total, actions_website, actions_phone,
			actions_directions, actions_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (location_id, recorded_date) DO UPDATE SET
			searches_direct = excluded.searches_direct,
			searches_discovery = excluded.searches_discovery,
			searches_total = excluded.searches_total,
			actions_website = excluded.actions_website,
			actions_phone = excluded.actions_phone,
			actions_directions = excluded.actions_directions,
			actions_total = excluded.actions_total
	`, g.LocationID, g.RecordedDate, g.SearchesDirect, g.SearchesDiscovery, g.SearchesTotal,
		g.ActionsWebsite, g.ActionsPhone, g.ActionsDirections, g.ActionsTotal)
	if err != nil {
		return fmt.Errorf("failed to upsert gbp metrics %d on %s: %w", g.LocationID, g.RecordedDate, err)
	}
	return nil
}

// UpsertSearchConsoleRows records a batch of Search Console rows in one transaction
func (s *Store) UpsertSearchConsoleRows(ctx context.Context, records []SearchConsoleRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO search_console_data (recorded_date, query, page, location_id,
			clicks, impressions, ctr, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (recorded_date, query, page) DO UPDATE SET
			location_id = excluded.location_id,
			clicks = excluded.clicks,
			impressions = excluded.impressions,
			ctr = excluded.ctr,
			position = excluded.position
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.RecordedDate, r.Query, r.Page, nullInt64(r.LocationID),
			r.Clicks, r.Impressions, r.CTR, r.Position); err != nil {
			return fmt.Errorf("failed to upsert search console row %q %s: %w", r.Query, r.Page, err)
		}
	}

	return tx.Commit()
}

// UpsertVideoMetric records one day of statistics for one video
func (s *Store) UpsertVideoMetric(ctx context.Context, v VideoMetric) error {
	_, err := s.exec(ctx, `
		INSERT INTO video_metrics (content_id, platform, external_id, recorded_date,
			views, likes, comments, avg_view_duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id, platform, recorded_date) DO UPDATE SET
			content_id = excluded.content_id,
			views = excluded.views,
			likes = excluded.likes,
			comments = excluded.comments,
			avg_view_duration = excluded.avg_view_duration
	`, nullInt64(v.ContentID), v.Platform, v.ExternalID, v.RecordedDate,
		v.Views, v.Likes, v.Comments, nullFloat(v.AvgViewDuration))
	if err != nil {
		return fmt.Errorf("failed to upsert %s video %s on %s: %w", v.Platform, v.ExternalID, v.RecordedDate, err)
	}
	return nil
}
