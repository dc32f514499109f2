package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a catalog lookup has no match
var ErrNotFound = errors.New("not found")

// Locations returns every location ordered by id
func (s *Store) Locations(ctx context.Context) ([]Location, error) {
	rows, err := s.query(ctx, `
		SELECT id, slug, name, short_name, latitude, longitude, radius_miles,
			market_character, gbp_location_id
		FROM locations
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var locations []Location
	for rows.Next() {
		var loc Location
		var gbp sql.NullString
		if err := rows.Scan(&loc.ID, &loc.Slug, &loc.Name, &loc.ShortName, &loc.Latitude,
			&loc.Longitude, &loc.RadiusMiles, &loc.MarketCharacter, &gbp); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		loc.GBPLocationID = gbp.String
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// LocationBySlug returns one location or ErrNotFound
func (s *Store) LocationBySlug(ctx context.Context, slug string) (*Location, error) {
	var loc Location
	var gbp sql.NullString
	err := s.queryRow(ctx, `
		SELECT id, slug, name, short_name, latitude, longitude, radius_miles,
			market_character, gbp_location_id
		FROM locations WHERE slug = ?
	`, slug).Scan(&loc.ID, &loc.Slug, &loc.Name, &loc.ShortName, &loc.Latitude,
		&loc.Longitude, &loc.RadiusMiles, &loc.MarketCharacter, &gbp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", slug, err)
	}
	loc.GBPLocationID = gbp.String
	return &loc, nil
}

// ActiveKeywords returns active keywords joined with their location slug
func (s *Store) ActiveKeywords(ctx context.Context) ([]Keyword, error) {
	rows, err := s.query(ctx, `
		SELECT k.id, k.keyword, k.location_id, l.slug, k.category, k.is_primary,
			k.is_active, k.target_position, k.monthly_search_volume
		FROM keywords k
		JOIN locations l ON l.id = k.location_id
		WHERE k.is_active = ?
		ORDER BY k.id
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query active keywords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keywords []Keyword
	for rows.Next() {
		var k Keyword
		var target, volume sql.NullInt64
		if err := rows.Scan(&k.ID, &k.Keyword, &k.LocationID, &k.LocationSlug, &k.Category,
			&k.IsPrimary, &k.IsActive, &target, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		k.TargetPosition = intPtr(target)
		k.MonthlySearchVolume = intPtr(volume)
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// ActiveCompetitors returns active competitors that have a domain
func (s *Store) ActiveCompetitors(ctx context.Context) ([]Competitor, error) {
	rows, err := s.query(ctx, `
		SELECT id, name, domain, location_id, is_active
		FROM competitors
		WHERE is_active = ? AND domain <> ''
		ORDER BY id
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query active competitors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var competitors []Competitor
	for rows.Next() {
		var c Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.LocationID, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

// ContentIDBySlug resolves a content piece id, or ErrNotFound
func (s *Store) ContentIDBySlug(ctx context.Context, slug string) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `SELECT id FROM content_pieces WHERE slug = ?`, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve content %s: %w", slug, err)
	}
	return id, nil
}

// UpsertLocation inserts or updates a location by slug and returns its id
func (s *Store) UpsertLocation(ctx context.Context, loc Location) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `
		INSERT INTO locations (slug, name, short_name, latitude, longitude, radius_miles,
			market_character, gbp_location_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			name = excluded.name,
			short_name = excluded.short_name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			radius_miles = excluded.radius_miles,
			market_character = excluded.market_character,
			gbp_location_id = excluded.gbp_location_id
		RETURNING id
	`, loc.Slug, loc.Name, loc.ShortName, loc.Latitude, loc.Longitude, loc.RadiusMiles,
		loc.MarketCharacter, nullString(loc.GBPLocationID)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert location %s: %w", loc.Slug, err)
	}
	return id, nil
}

// UpsertKeyword inserts or updates a keyword by (keyword, location) and returns its id
func (s *Store) UpsertKeyword(ctx context.Context, k Keyword) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `
		INSERT INTO keywords (keyword, location_id, category, is_primary, is_active,
			target_position, monthly_search_volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (keyword, location_id) DO UPDATE SET
			category = excluded.category,
			is_primary = excluded.is_primary,
			is_active = excluded.is_active,
			target_position = excluded.target_position,
			monthly_search_volume = excluded.monthly_search_volume
		RETURNING id
	`, k.Keyword, k.LocationID, k.Category, k.IsPrimary, k.IsActive,
		nullInt(k.TargetPosition), nullInt(k.MonthlySearchVolume)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert keyword %q: %w", k.Keyword, err)
	}
	return id, nil
}

// UpsertCompetitor inserts or updates a competitor by (location, domain) and returns its id
func (s *Store) UpsertCompetitor(ctx context.Context, c Competitor) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `
		INSERT INTO competitors (name, domain, location_id, is_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (location_id, domain) DO UPDATE SET
			name = excluded.name,
			is_active = excluded.is_active
		RETURNING id
	`, c.Name, c.Domain, c.LocationID, c.IsActive).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert competitor %s: %w", c.Domain, err)
	}
	return id, nil
}

// UpsertContentPiece inserts or updates a content piece by slug and returns its id
func (s *Store) UpsertContentPiece(ctx context.Context, p ContentPiece) (int64, error) {
	var id int64
	err := s.queryRow(ctx, `
		INSERT INTO content_pieces (title, slug, url, type, location_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			type = excluded.type,
			location_id = excluded.location_id
		RETURNING id
	`, p.Title, p.Slug, p.URL, p.Type, nullInt64(p.LocationID)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert content piece %s: %w", p.Slug, err)
	}
	return id, nil
}
