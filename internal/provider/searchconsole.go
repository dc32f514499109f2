package provider

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/masahif/seodash/internal/config"
)

// SearchConsoleRow is one (query, page) analytics row
type SearchConsoleRow struct {
	Query       string
	Page        string
	Clicks      float64
	Impressions float64
	CTR         float64
	Position    float64
}

type searchAnalyticsRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
}

type searchAnalyticsResponse struct {
	Rows []struct {
		Keys        []string `json:"keys"`
		Clicks      float64  `json:"clicks"`
		Impressions float64  `json:"impressions"`
		CTR         float64  `json:"ctr"`
		Position    float64  `json:"position"`
	} `json:"rows"`
}

// SearchConsole is the Search Console search analytics client
type SearchConsole struct {
	client *Client
	cfg    config.SearchConsoleConfig
}

// NewSearchConsole creates the client. httpClient must carry OAuth credentials.
func NewSearchConsole(cfg config.SearchConsoleConfig, opts Options, httpClient *http.Client) *SearchConsole {
	opts.BaseURL = cfg.BaseURL
	opts.HTTPClient = httpClient
	return &SearchConsole{client: NewClient("searchconsole", opts), cfg: cfg}
}

// Query returns up to rowLimit (query, page) rows for a single date
func (s *SearchConsole) Query(ctx context.Context, date string, rowLimit int) ([]SearchConsoleRow, error) {
	body := searchAnalyticsRequest{
		StartDate:  date,
		EndDate:    date,
		Dimensions: []string{"query", "page"},
		RowLimit:   rowLimit,
	}

	var resp searchAnalyticsResponse
	err := s.client.Do(ctx, http.MethodPost, "/webmasters/v3/sites/{site}/searchAnalytics/query", func(r *resty.Request) {
		r.SetPathParam("site", s.cfg.SiteURL)
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(body)
	}, &resp)
	if err != nil {
		return nil, err
	}

	rows := make([]SearchConsoleRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		row := SearchConsoleRow{
			Clicks:      r.Clicks,
			Impressions: r.Impressions,
			CTR:         r.CTR,
			Position:    r.Position,
		}
		if len(r.Keys) > 0 {
			row.Query = r.Keys[0]
		}
		if len(r.Keys) > 1 {
			row.Page = r.Keys[1]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
