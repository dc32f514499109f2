// Package catalog loads the tracked locations, keywords, competitors and
// content pieces from a YAML file and upserts them into the store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/masahif/seodash/internal/storage"
)

// Errors returned by Validate
var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrInvalidCategory = errors.New("invalid keyword category")
	ErrInvalidContent  = errors.New("invalid content type")
	ErrMissingField    = errors.New("missing required field")
)

// File is the catalog document
type File struct {
	Locations   []storage.Location `yaml:"locations"`
	Keywords    []Keyword          `yaml:"keywords"`
	Competitors []Competitor       `yaml:"competitors"`
	Content     []Content          `yaml:"content"`
}

// Keyword references its location by slug
type Keyword struct {
	Keyword             string `yaml:"keyword"`
	Location            string `yaml:"location"`
	Category            string `yaml:"category"`
	Primary             bool   `yaml:"primary"`
	Active              *bool  `yaml:"active"` // Defaults to true
	TargetPosition      *int   `yaml:"target_position"`
	MonthlySearchVolume *int   `yaml:"monthly_search_volume"`
}

// Competitor references its location by slug
type Competitor struct {
	Name     string `yaml:"name"`
	Domain   string `yaml:"domain"`
	Location string `yaml:"location"`
	Active   *bool  `yaml:"active"` // Defaults to true
}

// Content is a content piece; Location is optional
type Content struct {
	Title    string `yaml:"title"`
	Slug     string `yaml:"slug"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Location string `yaml:"location"`
}

// Summary counts the upserted entries
type Summary struct {
	Locations   int
	Keywords    int
	Competitors int
	Content     int
}

// Load decodes and validates a catalog document
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks required fields, enumerations and location references
func (f *File) Validate() error {
	slugs := make(map[string]bool, len(f.Locations))
	for i, l := range f.Locations {
		if l.Slug == "" || l.Name == "" {
			return fmt.Errorf("locations[%d]: slug and name: %w", i, ErrMissingField)
		}
		slugs[l.Slug] = true
	}

	for i, k := range f.Keywords {
		if k.Keyword == "" {
			return fmt.Errorf("keywords[%d]: keyword: %w", i, ErrMissingField)
		}
		if !slugs[k.Location] {
			return fmt.Errorf("keywords[%d] %q: %w %q", i, k.Keyword, ErrUnknownLocation, k.Location)
		}
		if !slices.Contains(storage.KeywordCategories, k.Category) {
			return fmt.Errorf("keywords[%d] %q: %w %q", i, k.Keyword, ErrInvalidCategory, k.Category)
		}
	}

	for i, c := range f.Competitors {
		if c.Name == "" {
			return fmt.Errorf("competitors[%d]: name: %w", i, ErrMissingField)
		}
		if !slugs[c.Location] {
			return fmt.Errorf("competitors[%d] %q: %w %q", i, c.Name, ErrUnknownLocation, c.Location)
		}
	}

	for i, c := range f.Content {
		if c.Title == "" || c.Slug == "" || c.URL == "" {
			return fmt.Errorf("content[%d]: title, slug and url: %w", i, ErrMissingField)
		}
		if !slices.Contains(storage.ContentTypes, c.Type) {
			return fmt.Errorf("content[%d] %q: %w %q", i, c.Slug, ErrInvalidContent, c.Type)
		}
		if c.Location != "" && !slugs[c.Location] {
			return fmt.Errorf("content[%d] %q: %w %q", i, c.Slug, ErrUnknownLocation, c.Location)
		}
	}

	return nil
}

// Store is the catalog write surface
type Store interface {
	UpsertLocation(ctx context.Context, loc storage.Location) (int64, error)
	UpsertKeyword(ctx context.Context, k storage.Keyword) (int64, error)
	UpsertCompetitor(ctx context.Context, c storage.Competitor) (int64, error)
	UpsertContentPiece(ctx context.Context, p storage.ContentPiece) (int64, error)
}

// Apply upserts every entry by natural key. Running it twice is a no-op.
func Apply(ctx context.Context, store Store, f *File) (Summary, error) {
	var s Summary
	ids := make(map[string]int64, len(f.Locations))

	for _, l := range f.Locations {
		id, err := store.UpsertLocation(ctx, l)
		if err != nil {
			return s, err
		}
		ids[l.Slug] = id
		s.Locations++
	}

	for _, k := range f.Keywords {
		_, err := store.UpsertKeyword(ctx, storage.Keyword{
			Keyword:             k.Keyword,
			LocationID:          ids[k.Location],
			Category:            k.Category,
			IsPrimary:           k.Primary,
			IsActive:            active(k.Active),
			TargetPosition:      k.TargetPosition,
			MonthlySearchVolume: k.MonthlySearchVolume,
		})
		if err != nil {
			return s, err
		}
		s.Keywords++
	}

	for _, c := range f.Competitors {
		_, err := store.UpsertCompetitor(ctx, storage.Competitor{
			Name:       c.Name,
			Domain:     c.Domain,
			LocationID: ids[c.Location],
			IsActive:   active(c.Active),
		})
		if err != nil {
			return s, err
		}
		s.Competitors++
	}

	for _, c := range f.Content {
		piece := storage.ContentPiece{Title: c.Title, Slug: c.Slug, URL: c.URL, Type: c.Type}
		if c.Location != "" {
			id := ids[c.Location]
			piece.LocationID = &id
		}
		if _, err := store.UpsertContentPiece(ctx, piece); err != nil {
			return s, err
		}
		s.Content++
	}

	return s, nil
}

func active(v *bool) bool {
	return v == nil || *v
}
