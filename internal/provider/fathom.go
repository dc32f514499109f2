package provider

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/masahif/seodash/internal/config"
)

// AggregateRequest selects one date range, optionally restricted to a path prefix
type AggregateRequest struct {
	From       string
	To         string
	PathPrefix string
}

// Aggregate is a pageview aggregate. Fathom sends most values as strings.
type Aggregate struct {
	Pageviews   Number `json:"pageviews"`
	Visits      Number `json:"visits"`
	Uniques     Number `json:"uniques"`
	AvgDuration Number `json:"avg_duration"`
	BounceRate  Number `json:"bounce_rate"`
}

// TopPage is one row of the pathname grouping
type TopPage struct {
	Pathname string `json:"pathname"`
	Visits   Number `json:"visits"`
}

type pathFilter struct {
	Property string `json:"property"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Fathom is the web analytics client
type Fathom struct {
	client *Client
	cfg    config.FathomConfig
}

// NewFathom creates the analytics provider client
func NewFathom(cfg config.FathomConfig, opts Options) *Fathom {
	opts.BaseURL = cfg.BaseURL
	c := NewClient("fathom", opts)
	c.SetBearerAuth(cfg.APIKey)
	return &Fathom{client: c, cfg: cfg}
}

// Aggregate returns visits, uniques, pageviews, average duration and bounce rate.
// An empty answer yields a zero Aggregate.
func (f *Fathom) Aggregate(ctx context.Context, req AggregateRequest) (*Aggregate, error) {
	params := map[string]string{
		"entity":     "pageview",
		"entity_id":  f.cfg.SiteID,
		"aggregates": "pageviews,visits,uniques,avg_duration,bounce_rate",
		"date_from":  req.From,
		"date_to":    req.To,
	}
	if req.PathPrefix != "" {
		filters, err := json.Marshal([]pathFilter{{
			Property: "pathname",
			Operator: "is like",
			Value:    req.PathPrefix + "*",
		}})
		if err != nil {
			return nil, err
		}
		params["filters"] = string(filters)
	}

	var rows []Aggregate
	err := f.client.Do(ctx, http.MethodGet, "/v1/aggregations", func(r *resty.Request) {
		r.SetQueryParams(params)
	}, &rows)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &Aggregate{}, nil
	}
	return &rows[0], nil
}

// TopPages returns the most visited paths in the range
func (f *Fathom) TopPages(ctx context.Context, from, to string) ([]TopPage, error) {
	limit := f.cfg.TopPagesLimit
	if limit <= 0 {
		limit = 20
	}

	var pages []TopPage
	err := f.client.Do(ctx, http.MethodGet, "/v1/aggregations", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"entity":         "pageview",
			"entity_id":      f.cfg.SiteID,
			"aggregates":     "visits",
			"field_grouping": "pathname",
			"sort_by":        "visits:desc",
			"limit":          strconv.Itoa(limit),
			"date_from":      from,
			"date_to":        to,
		})
	}, &pages)
	if err != nil {
		return nil, err
	}
	return pages, nil
}
