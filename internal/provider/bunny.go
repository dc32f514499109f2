package provider

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/masahif/seodash/internal/config"
)

// bunnyMaxPages bounds pagination against a misbehaving totalItems
const bunnyMaxPages = 1000

// BunnyVideo is one video of a Bunny Stream library
type BunnyVideo struct {
	GUID             string  `json:"guid"`
	Title            string  `json:"title"`
	Views            int64   `json:"views"`
	AverageWatchTime float64 `json:"averageWatchTime"`
}

type bunnyListResponse struct {
	TotalItems   int          `json:"totalItems"`
	CurrentPage  int          `json:"currentPage"`
	ItemsPerPage int          `json:"itemsPerPage"`
	Items        []BunnyVideo `json:"items"`
}

// Bunny is the Bunny Stream API client
type Bunny struct {
	client *Client
	cfg    config.BunnyConfig
}

// NewBunny creates the client, authenticating with the AccessKey header
func NewBunny(cfg config.BunnyConfig, opts Options) *Bunny {
	opts.BaseURL = cfg.BaseURL
	c := NewClient("bunny", opts)
	c.SetAPIKeyHeader("AccessKey", cfg.APIKey)
	return &Bunny{client: c, cfg: cfg}
}

// ListVideos returns every video in the library, following pagination
func (b *Bunny) ListVideos(ctx context.Context) ([]BunnyVideo, error) {
	perPage := b.cfg.ItemsPerPage
	if perPage <= 0 {
		perPage = 100
	}

	var all []BunnyVideo
	for page := 1; page <= bunnyMaxPages; page++ {
		var resp bunnyListResponse
		err := b.client.Do(ctx, http.MethodGet, "/library/{library}/videos", func(r *resty.Request) {
			r.SetPathParam("library", b.cfg.LibraryID)
			r.SetQueryParams(map[string]string{
				"page":         strconv.Itoa(page),
				"itemsPerPage": strconv.Itoa(perPage),
			})
		}, &resp)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Items...)
		if len(resp.Items) < perPage || (resp.TotalItems > 0 && len(all) >= resp.TotalItems) {
			break
		}
	}
	return all, nil
}
