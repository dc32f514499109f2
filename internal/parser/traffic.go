package parser

import (
	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

// TrafficRecord normalizes an analytics aggregate. A nil locationID is the
// sitewide row; topPages is only stored on that row.
func TrafficRecord(date string, locationID *int64, agg provider.Aggregate, topPages []provider.TopPage) storage.TrafficRecord {
	rec := storage.TrafficRecord{
		RecordedDate:   date,
		LocationID:     locationID,
		Pageviews:      agg.Pageviews.Int(),
		Visits:         agg.Visits.Int(),
		UniqueVisitors: agg.Uniques.Int(),
		AvgDuration:    agg.AvgDuration.Ptr(),
		BounceRate:     agg.BounceRate.Ptr(),
	}

	// Older aggregate responses omit pageviews
	if !agg.Pageviews.Valid {
		rec.Pageviews = rec.Visits
	}

	if locationID == nil && topPages != nil {
		rec.TopPages = make([]storage.TopPage, 0, len(topPages))
		for _, p := range topPages {
			rec.TopPages = append(rec.TopPages, storage.TopPage{Path: p.Pathname, Visits: p.Visits.Int()})
		}
	}

	return rec
}
