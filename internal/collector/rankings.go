package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masahif/seodash/internal/config"
	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/metrics"
	"github.com/masahif/seodash/internal/parser"
	"github.com/masahif/seodash/internal/provider"
	"github.com/masahif/seodash/internal/storage"
)

const defaultSerpBatchSize = 100

// RankingJob records today's SERP position of every active keyword and of
// the competitors tracked in the keyword's location.
type RankingJob struct {
	store    Store
	rank     RankProvider
	cfg      *config.Config
	calendar Calendar
}

// NewRankingJob creates the ranking collection job
func NewRankingJob(store Store, rank RankProvider, cfg *config.Config, calendar Calendar) *RankingJob {
	return &RankingJob{store: store, rank: rank, cfg: cfg, calendar: calendar}
}

// Run executes one collection pass. A failing batch is logged and skipped;
// store errors abort the run.
func (j *RankingJob) Run(ctx context.Context) error {
	log := logging.ForJob(ctx, JobRankings)

	keywords, err := j.store.ActiveKeywords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load keywords: %w", err)
	}
	if len(keywords) == 0 {
		log.Info("No active keywords")
		return nil
	}

	competitors, err := j.store.ActiveCompetitors(ctx)
	if err != nil {
		return fmt.Errorf("failed to load competitors: %w", err)
	}
	byLocation := make(map[int64][]storage.Competitor)
	for _, c := range competitors {
		byLocation[c.LocationID] = append(byLocation[c.LocationID], c)
	}

	today := j.calendar.Date(0)
	size := j.rank.BatchSize()
	if size <= 0 {
		size = defaultSerpBatchSize
	}

	var stored, skipped, failedBatches int
	for start := 0; start < len(keywords); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := keywords[start:min(start+size, len(keywords))]
		queries := j.queries(batch)
		tasks, err := j.rank.FetchSerp(ctx, queries)
		if err != nil {
			failedBatches++
			metrics.RecordUnitFailure(JobRankings, "batch")
			log.Error("SERP batch failed", "offset", start, "keywords", len(batch), "error", err)
			continue
		}

		for i, task := range tasks {
			if i >= len(batch) {
				log.Warn("SERP task without keyword", "offset", start, "index", i, "task_id", task.ID)
				continue
			}
			if !echoes(task, queries[i]) {
				skipped++
				log.Warn("SERP task does not match its keyword",
					"offset", start,
					"index", i,
					"keyword", queries[i].Keyword,
					"task_keyword", task.Data.Keyword,
					"task_location_code", task.Data.LocationCode)
				continue
			}

			ok, err := j.storeTask(ctx, log, batch[i], task, byLocation[batch[i].LocationID], today)
			if err != nil {
				return err
			}
			if ok {
				stored++
			} else {
				skipped++
			}
		}
	}

	log.Info("Rankings collected",
		"date", today,
		"keywords", len(keywords),
		"stored", stored,
		"skipped", skipped,
		"failed_batches", failedBatches)
	return nil
}

func (j *RankingJob) queries(batch []storage.Keyword) []provider.SerpQuery {
	codes := make(map[string]int, len(j.cfg.Locations))
	for _, l := range j.cfg.Locations {
		if l.SerpLocationCode > 0 {
			codes[l.Slug] = l.SerpLocationCode
		}
	}

	queries := make([]provider.SerpQuery, 0, len(batch))
	for _, k := range batch {
		code, ok := codes[k.LocationSlug]
		if !ok {
			code = j.cfg.Providers.DataForSEO.DefaultLocationCode
		}
		queries = append(queries, provider.SerpQuery{Keyword: k.Keyword, LocationCode: code})
	}
	return queries
}

// echoes reports whether task answers q. Tasks that echo no parameters are
// trusted by position.
func echoes(task provider.SerpTask, q provider.SerpQuery) bool {
	if task.Data.Keyword != "" && !strings.EqualFold(strings.TrimSpace(task.Data.Keyword), strings.TrimSpace(q.Keyword)) {
		return false
	}
	return task.Data.LocationCode == 0 || task.Data.LocationCode == q.LocationCode
}

func (j *RankingJob) storeTask(ctx context.Context, log *slog.Logger, kw storage.Keyword, task provider.SerpTask, competitors []storage.Competitor, today string) (bool, error) {
	domains := make([]string, 0, len(competitors))
	for _, c := range competitors {
		domains = append(domains, c.Domain)
	}

	ranking, ok := parser.ParseSerp(task, j.cfg.Site.Domain, domains)
	if !ok {
		log.Warn("SERP task without result",
			"keyword", kw.Keyword,
			"status_code", task.StatusCode,
			"status_message", task.StatusMessage)
		return false, nil
	}

	err := j.store.UpsertKeywordRanking(ctx, storage.KeywordRanking{
		KeywordID:         kw.ID,
		LocationID:        kw.LocationID,
		RecordedDate:      today,
		Position:          ranking.Position,
		URL:               ranking.URL,
		LocalPackPosition: ranking.LocalPackPosition,
		FeaturedSnippet:   ranking.FeaturedSnippet,
	})
	if err != nil {
		return false, fmt.Errorf("failed to store ranking for %q: %w", kw.Keyword, err)
	}
	metrics.RecordUpsert("keyword_rankings", 1)

	var matched int
	for _, c := range competitors {
		pos, found := ranking.Competitors[c.Domain]
		if !found {
			continue
		}
		err := j.store.UpsertCompetitorRanking(ctx, storage.CompetitorRanking{
			CompetitorID:      c.ID,
			KeywordID:         kw.ID,
			RecordedDate:      today,
			Position:          pos.Position,
			URL:               pos.URL,
			LocalPackPosition: pos.LocalPackPosition,
		})
		if err != nil {
			return false, fmt.Errorf("failed to store competitor %s for %q: %w", c.Domain, kw.Keyword, err)
		}
		matched++
	}
	metrics.RecordUpsert("competitor_rankings", matched)

	return true, nil
}
