package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Read queries backing the dashboards and the collection tests.
// recorded_date is cast to text so both dialects scan it as YYYY-MM-DD.

// KeywordRanking returns the ranking of a keyword on a date, or ErrNotFound
func (s *Store) KeywordRanking(ctx context.Context, keywordID int64, date string) (*KeywordRanking, error) {
	var r KeywordRanking
	var pos, prev, local sql.NullInt64
	var url sql.NullString
	err := s.queryRow(ctx, `
		SELECT keyword_id, location_id, CAST(recorded_date AS TEXT), position,
			previous_position, url, local_pack_position, featured_snippet
		FROM keyword_rankings
		WHERE keyword_id = ? AND recorded_date = ?
	`, keywordID, date).Scan(&r.KeywordID, &r.LocationID, &r.RecordedDate, &pos, &prev,
		&url, &local, &r.FeaturedSnippet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get keyword ranking: %w", err)
	}
	r.Position = intPtr(pos)
	r.PreviousPosition = intPtr(prev)
	r.URL = url.String
	r.LocalPackPosition = intPtr(local)
	return &r, nil
}

// RankingHistory returns a keyword's rankings ordered by date
func (s *Store) RankingHistory(ctx context.Context, keywordID int64) ([]KeywordRanking, error) {
	rows, err := s.query(ctx, `
		SELECT keyword_id, location_id, CAST(recorded_date AS TEXT), position,
			previous_position, url, local_pack_position, featured_snippet
		FROM keyword_rankings
		WHERE keyword_id = ?
		ORDER BY recorded_date
	`, keywordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []KeywordRanking
	for rows.Next() {
		var r KeywordRanking
		var pos, prev, local sql.NullInt64
		var url sql.NullString
		if err := rows.Scan(&r.KeywordID, &r.LocationID, &r.RecordedDate, &pos, &prev,
			&url, &local, &r.FeaturedSnippet); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		r.Position = intPtr(pos)
		r.PreviousPosition = intPtr(prev)
		r.URL = url.String
		r.LocalPackPosition = intPtr(local)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CompetitorRankings returns all competitor rankings recorded for a keyword on a date
func (s *Store) CompetitorRankings(ctx context.Context, keywordID int64, date string) ([]CompetitorRanking, error) {
	rows, err := s.query(ctx, `
		SELECT competitor_id, keyword_id, CAST(recorded_date AS TEXT), position, url,
			local_pack_position
		FROM competitor_rankings
		WHERE keyword_id = ? AND recorded_date = ?
		ORDER BY competitor_id
	`, keywordID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitor rankings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []CompetitorRanking
	for rows.Next() {
		var r CompetitorRanking
		var pos, local sql.NullInt64
		var url sql.NullString
		if err := rows.Scan(&r.CompetitorID, &r.KeywordID, &r.RecordedDate, &pos, &url, &local); err != nil {
			return nil, fmt.Errorf("failed to scan competitor ranking: %w", err)
		}
		r.Position = intPtr(pos)
		r.URL = url.String
		r.LocalPackPosition = intPtr(local)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Traffic returns all traffic rows for a date, sitewide first
func (s *Store) Traffic(ctx context.Context, date string) ([]TrafficRecord, error) {
	rows, err := s.query(ctx, `
		SELECT CAST(recorded_date AS TEXT), location_id, pageviews, visits, unique_visitors,
			avg_duration, bounce_rate, CAST(top_pages AS TEXT)
		FROM traffic_data
		WHERE recorded_date = ?
		ORDER BY COALESCE(location_id, 0)
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []TrafficRecord
	for rows.Next() {
		var t TrafficRecord
		var loc sql.NullInt64
		var avg, bounce sql.NullFloat64
		var top sql.NullString
		if err := rows.Scan(&t.RecordedDate, &loc, &t.Pageviews, &t.Visits, &t.UniqueVisitors,
			&avg, &bounce, &top); err != nil {
			return nil, fmt.Errorf("failed to scan traffic: %w", err)
		}
		t.LocationID = int64Ptr(loc)
		t.AvgDuration = floatPtr(avg)
		t.BounceRate = floatPtr(bounce)
		if top.Valid && top.String != "" {
			if err := json.Unmarshal([]byte(top.String), &t.TopPages); err != nil {
				return nil, fmt.Errorf("failed to decode top pages: %w", err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GBPMetrics returns the Business Profile row for a location on a date, or ErrNotFound
func (s *Store) GBPMetrics(ctx context.Context, locationID int64, date string) (*GBPRecord, error) {
	var g GBPRecord
	err := s.queryRow(ctx, `
		SELECT location_id, CAST(recorded_date AS TEXT), searches_direct, searches_discovery,
			searches_total, actions_website, actions_phone, actions_directions, actions_total
		FROM gbp_metrics
		WHERE location_id = ? AND recorded_date = ?
	`, locationID, date).Scan(&g.LocationID, &g.RecordedDate, &g.SearchesDirect,
		&g.SearchesDiscovery, &g.SearchesTotal, &g.ActionsWebsite, &g.ActionsPhone,
		&g.ActionsDirections, &g.ActionsTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gbp metrics: %w", err)
	}
	return &g, nil
}

// SearchConsoleRows returns all Search Console rows for a date
func (s *Store) SearchConsoleRows(ctx context.Context, date string) ([]SearchConsoleRecord, error) {
	rows, err := s.query(ctx, `
		SELECT CAST(recorded_date AS TEXT), query, page, location_id, clicks, impressions,
			ctr, position
		FROM search_console_data
		WHERE recorded_date = ?
		ORDER BY query, page
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query search console rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SearchConsoleRecord
	for rows.Next() {
		var r SearchConsoleRecord
		var loc sql.NullInt64
		if err := rows.Scan(&r.RecordedDate, &r.Query, &r.Page, &loc, &r.Clicks,
			&r.Impressions, &r.CTR, &r.Position); err != nil {
			return nil, fmt.Errorf("failed to scan search console row: %w", err)
		}
		r.LocationID = int64Ptr(loc)
		out = append(out, r)
	}
	return out, rows.Err()
}

// VideoMetrics returns all video rows for a platform on a date
func (s *Store) VideoMetrics(ctx context.Context, platform, date string) ([]VideoMetric, error) {
	rows, err := s.query(ctx, `
		SELECT content_id, platform, external_id, CAST(recorded_date AS TEXT), views,
			likes, comments, avg_view_duration
		FROM video_metrics
		WHERE platform = ? AND recorded_date = ?
		ORDER BY external_id
	`, platform, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query video metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []VideoMetric
	for rows.Next() {
		var v VideoMetric
		var content sql.NullInt64
		var avg sql.NullFloat64
		if err := rows.Scan(&content, &v.Platform, &v.ExternalID, &v.RecordedDate, &v.Views,
			&v.Likes, &v.Comments, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan video metric: %w", err)
		}
		v.ContentID = int64Ptr(content)
		v.AvgViewDuration = floatPtr(avg)
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountRows returns the number of rows in a metric table
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case "keyword_rankings", "competitor_rankings", "traffic_data", "gbp_metrics",
		"search_console_data", "video_metrics":
	default:
		return 0, fmt.Errorf("unknown metric table %q", table)
	}

	var n int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
