package parser

import (
	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

// YouTubeMetric normalizes one video's statistics
func YouTubeMetric(date string, v provider.VideoStats, contentID *int64) storage.VideoMetric {
	return storage.VideoMetric{
		ContentID:    contentID,
		Platform:     storage.PlatformYouTube,
		ExternalID:   v.ID,
		RecordedDate: date,
		Views:        v.ViewCount.Int(),
		Likes:        v.LikeCount.Int(),
		Comments:     v.CommentCount.Int(),
	}
}

// BunnyMetric normalizes one Bunny Stream video. A zero watch time is
// stored as unknown.
func BunnyMetric(date string, v provider.BunnyVideo) storage.VideoMetric {
	m := storage.VideoMetric{
		Platform:     storage.PlatformBunny,
		ExternalID:   v.GUID,
		RecordedDate: date,
		Views:        v.Views,
	}
	if v.AverageWatchTime > 0 {
		avg := v.AverageWatchTime
		m.AvgViewDuration = &avg
	}
	return m
}
