package parser

import (
	"strings"

	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

// PagePattern maps a URL fragment to a location
type PagePattern struct {
	Pattern    string
	LocationID int64
}

// AttributePage returns the location of the first pattern contained in page,
// or nil when none matches.
func AttributePage(page string, patterns []PagePattern) *int64 {
	for _, p := range patterns {
		if p.Pattern != "" && strings.Contains(page, p.Pattern) {
			id := p.LocationID
			return &id
		}
	}
	return nil
}

// SearchConsoleRecords normalizes provider rows for one date
func SearchConsoleRecords(date string, rows []provider.SearchConsoleRow, patterns []PagePattern) []storage.SearchConsoleRecord {
	records := make([]storage.SearchConsoleRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, storage.SearchConsoleRecord{
			RecordedDate: date,
			Query:        r.Query,
			Page:         r.Page,
			LocationID:   AttributePage(r.Page, patterns),
			Clicks:       int64(r.Clicks),
			Impressions:  int64(r.Impressions),
			CTR:          r.CTR,
			Position:     r.Position,
		})
	}
	return records
}
