package parser

import (
	"strconv"
	"strings"

	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

// ReduceGBPMetrics folds Business Profile daily series into one day's record.
// Missing or unparseable values count as zero; unknown metrics are ignored.
func ReduceGBPMetrics(locationID int64, date string, series []provider.MetricSeries) storage.GBPRecord {
	rec := storage.GBPRecord{LocationID: locationID, RecordedDate: date}

	for _, s := range series {
		var total int64
		for _, v := range s.Values {
			total += parseCount(v.Value)
		}

		switch s.Metric {
		case "QUERIES_DIRECT":
			rec.SearchesDirect = total
		case "QUERIES_INDIRECT":
			rec.SearchesDiscovery = total
		case "CALL_CLICKS":
			rec.ActionsPhone = total
		case "WEBSITE_CLICKS":
			rec.ActionsWebsite = total
		case "BUSINESS_DIRECTION_REQUESTS":
			rec.ActionsDirections = total
		}
	}

	rec.SearchesTotal = rec.SearchesDirect + rec.SearchesDiscovery
	rec.ActionsTotal = rec.ActionsWebsite + rec.ActionsPhone + rec.ActionsDirections
	return rec
}

func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
