package provider

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/masahif/seodash/internal/config"
)

// youtubeMaxIDs is the API cap on ids per videos request
const youtubeMaxIDs = 50

// VideoStats are the public statistics of one YouTube video
type VideoStats struct {
	ID           string
	Title        string
	ViewCount    Number
	LikeCount    Number
	CommentCount Number
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    Number `json:"viewCount"`
			LikeCount    Number `json:"likeCount"`
			CommentCount Number `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// YouTube is the YouTube Data API client
type YouTube struct {
	client *Client
	cfg    config.YouTubeConfig
}

// NewYouTube creates the client, authenticating with an API key query parameter
func NewYouTube(cfg config.YouTubeConfig, opts Options) *YouTube {
	opts.BaseURL = cfg.BaseURL
	c := NewClient("youtube", opts)
	c.SetAPIKeyQuery("key", cfg.APIKey)
	return &YouTube{client: c, cfg: cfg}
}

// ChannelVideoIDs lists the channel's most recent video ids
func (y *YouTube) ChannelVideoIDs(ctx context.Context) ([]string, error) {
	maxResults := y.cfg.MaxResults
	if maxResults <= 0 || maxResults > youtubeMaxIDs {
		maxResults = youtubeMaxIDs
	}

	var resp youtubeSearchResponse
	err := y.client.Do(ctx, http.MethodGet, "/youtube/v3/search", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"channelId":  y.cfg.ChannelID,
			"part":       "id",
			"type":       "video",
			"order":      "date",
			"maxResults": strconv.Itoa(maxResults),
		})
	}, &resp)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

// VideoStatistics fetches statistics for ids, 50 per request
func (y *YouTube) VideoStatistics(ctx context.Context, ids []string) ([]VideoStats, error) {
	var out []VideoStats

	for start := 0; start < len(ids); start += youtubeMaxIDs {
		end := min(start+youtubeMaxIDs, len(ids))

		var resp youtubeVideosResponse
		err := y.client.Do(ctx, http.MethodGet, "/youtube/v3/videos", func(r *resty.Request) {
			r.SetQueryParams(map[string]string{
				"id":   strings.Join(ids[start:end], ","),
				"part": "statistics,contentDetails,snippet",
			})
		}, &resp)
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			out = append(out, VideoStats{
				ID:           item.ID,
				Title:        item.Snippet.Title,
				ViewCount:    item.Statistics.ViewCount,
				LikeCount:    item.Statistics.LikeCount,
				CommentCount: item.Statistics.CommentCount,
			})
		}
	}
	return out, nil
}
