package collector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/metrics"
	"github.com/masahif/seodash/internal/parser"
	"github.com/masahif/seodash/internal/storage"
)

// VideoJob stores today's video statistics. Either platform may be nil,
// meaning it is not configured.
type VideoJob struct {
	store    Store
	youtube  YouTubeProvider
	bunny    BunnyProvider
	calendar Calendar
}

// NewVideoJob creates the video collection job
func NewVideoJob(store Store, youtube YouTubeProvider, bunny BunnyProvider, calendar Calendar) *VideoJob {
	return &VideoJob{store: store, youtube: youtube, bunny: bunny, calendar: calendar}
}

// Run collects each configured platform. A platform failure is logged and
// does not fail the job.
func (j *VideoJob) Run(ctx context.Context) error {
	log := logging.ForJob(ctx, JobVideos)
	today := j.calendar.Date(0)

	if j.youtube == nil {
		log.Info("YouTube not configured, skipping")
	} else if n, err := j.collectYouTube(ctx, log, today); err != nil {
		metrics.RecordUnitFailure(JobVideos, storage.PlatformYouTube)
		log.Error("YouTube collection failed", "stored", n, "error", err)
	} else {
		log.Info("YouTube videos collected", "date", today, "videos", n)
	}

	if j.bunny == nil {
		log.Info("Bunny Stream not configured, skipping")
	} else if n, err := j.collectBunny(ctx, today); err != nil {
		metrics.RecordUnitFailure(JobVideos, storage.PlatformBunny)
		log.Error("Bunny Stream collection failed", "stored", n, "error", err)
	} else {
		log.Info("Bunny Stream videos collected", "date", today, "videos", n)
	}

	return nil
}

func (j *VideoJob) collectYouTube(ctx context.Context, log *slog.Logger, today string) (int, error) {
	ids, err := j.youtube.ChannelVideoIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	stats, err := j.youtube.VideoStatistics(ctx, ids)
	if err != nil {
		return 0, err
	}

	var stored int
	for _, v := range stats {
		metric := parser.YouTubeMetric(today, v, j.contentID(ctx, log, v.ID))
		if err := j.store.UpsertVideoMetric(ctx, metric); err != nil {
			return stored, err
		}
		stored++
	}
	metrics.RecordUpsert("video_metrics", stored)
	return stored, nil
}

// contentID resolves the catalog entry for a video. Lookup failures are
// logged and leave the metric unlinked.
func (j *VideoJob) contentID(ctx context.Context, log *slog.Logger, videoID string) *int64 {
	id, err := j.store.ContentIDBySlug(ctx, videoID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Warn("Content lookup failed", "video_id", videoID, "error", err)
		return nil
	}
	return &id
}

func (j *VideoJob) collectBunny(ctx context.Context, today string) (int, error) {
	videos, err := j.bunny.ListVideos(ctx)
	if err != nil {
		return 0, err
	}

	var stored int
	for _, v := range videos {
		if err := j.store.UpsertVideoMetric(ctx, parser.BunnyMetric(today, v)); err != nil {
			return stored, err
		}
		stored++
	}
	metrics.RecordUpsert("video_metrics", stored)
	return stored, nil
}
