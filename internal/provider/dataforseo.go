package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/masahif/seodash/internal/config"
)

const dataForSEOStatusOK = 20000

// SerpQuery is one keyword to rank in one SERP region
type SerpQuery struct {
	Keyword      string
	LocationCode int
}

// SerpTask is the provider's answer for one query
type SerpTask struct {
	ID            string       `json:"id"`
	StatusCode    int          `json:"status_code"`
	StatusMessage string       `json:"status_message"`
	Data          SerpTaskData `json:"data"`
	Result        []SerpResult `json:"result"`
}

// SerpTaskData echoes the request parameters
type SerpTaskData struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
}

// SerpResult is one result page
type SerpResult struct {
	Keyword string     `json:"keyword"`
	Items   []SerpItem `json:"items"`
}

// SerpItem is one SERP element. Local-pack blocks carry their entries in Items.
type SerpItem struct {
	Type              string     `json:"type"`
	RankGroup         int        `json:"rank_group"`
	RankAbsolute      int        `json:"rank_absolute"`
	RankInGroup       int        `json:"rank_in_group"`
	Domain            string     `json:"domain"`
	URL               string     `json:"url"`
	Title             string     `json:"title"`
	IsFeaturedSnippet bool       `json:"is_featured_snippet"`
	Items             []SerpItem `json:"items"`
}

type serpTaskRequest struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Device       string `json:"device"`
	OS           string `json:"os"`
	Depth        int    `json:"depth"`
}

type serpResponse struct {
	StatusCode    int        `json:"status_code"`
	StatusMessage string     `json:"status_message"`
	Tasks         []SerpTask `json:"tasks"`
}

// DataForSEO is the live SERP rank-tracking client
type DataForSEO struct {
	client *Client
	cfg    config.DataForSEOConfig
}

// NewDataForSEO creates the rank provider client
func NewDataForSEO(cfg config.DataForSEOConfig, opts Options) *DataForSEO {
	opts.BaseURL = cfg.BaseURL
	c := NewClient("dataforseo", opts)
	c.SetBasicAuth(cfg.Login, cfg.Password)
	return &DataForSEO{client: c, cfg: cfg}
}

// BatchSize is the maximum number of tasks per request
func (d *DataForSEO) BatchSize() int {
	if d.cfg.BatchSize <= 0 || d.cfg.BatchSize > 100 {
		return 100
	}
	return d.cfg.BatchSize
}

// FetchSerp posts one batch of queries and returns the tasks in request order
func (d *DataForSEO) FetchSerp(ctx context.Context, queries []SerpQuery) ([]SerpTask, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	if len(queries) > d.BatchSize() {
		return nil, fmt.Errorf("dataforseo: batch of %d exceeds limit %d", len(queries), d.BatchSize())
	}

	tasks := make([]serpTaskRequest, len(queries))
	for i, q := range queries {
		tasks[i] = serpTaskRequest{
			Keyword:      q.Keyword,
			LocationCode: q.LocationCode,
			LanguageCode: d.cfg.LanguageCode,
			Device:       d.cfg.Device,
			OS:           d.cfg.OS,
			Depth:        d.cfg.Depth,
		}
	}

	var resp serpResponse
	err := d.client.Do(ctx, http.MethodPost, "/v3/serp/google/organic/live/regular", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(tasks)
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 0 && resp.StatusCode != dataForSEOStatusOK {
		return nil, fmt.Errorf("dataforseo: status %d: %s", resp.StatusCode, resp.StatusMessage)
	}
	return resp.Tasks, nil
}
