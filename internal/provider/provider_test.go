package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"github.com/masahif/seodash/internal/config"
)

func testOptions() Options {
	return Options{Timeout: 5 * time.Second, UserAgent: "seodash-test"}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestDataForSEO_FetchSerp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/serp/google/organic/live/regular", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "login", user)
		require.Equal(t, "secret", pass)

		var tasks []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&tasks))
		require.Len(t, tasks, 2)
		require.Equal(t, "elder law attorney manhattan", tasks[0]["keyword"])
		require.EqualValues(t, 1022412, tasks[1]["location_code"])
		require.Equal(t, "en", tasks[0]["language_code"])
		require.Equal(t, "desktop", tasks[0]["device"])
		require.Equal(t, "windows", tasks[0]["os"])
		require.EqualValues(t, 100, tasks[0]["depth"])

		writeJSON(w, `{"status_code":20000,"tasks":[
			{"id":"a","status_code":20000,"result":[{"keyword":"elder law attorney manhattan","items":[
				{"type":"organic","rank_absolute":4,"domain":"muchnikelderlaw.com","url":"https://muchnikelderlaw.com/manhattan/"},
				{"type":"local_pack","rank_absolute":1,"items":[{"domain":"rival.com","rank_in_group":1}]}
			]}]},
			{"id":"b","status_code":40501,"status_message":"Invalid Field","result":null}
		]}`)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().Providers.DataForSEO
	cfg.BaseURL = server.URL
	cfg.Login = "login"
	cfg.Password = "secret"
	client := NewDataForSEO(cfg, testOptions())

	tasks, err := client.FetchSerp(context.Background(), []SerpQuery{
		{Keyword: "elder law attorney manhattan", LocationCode: 1023191},
		{Keyword: "estate planning morristown", LocationCode: 1022412},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Len(t, tasks[0].Result[0].Items, 2)
	require.Equal(t, 4, tasks[0].Result[0].Items[0].RankAbsolute)
	require.Equal(t, "rival.com", tasks[0].Result[0].Items[1].Items[0].Domain)
	require.Empty(t, tasks[1].Result)
}

func TestDataForSEO_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Authorization"), "Basic") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "upstream down")
			return
		}
	}))
	defer server.Close()

	cfg := config.DefaultConfig().Providers.DataForSEO
	cfg.BaseURL = server.URL
	cfg.BatchSize = 2
	client := NewDataForSEO(cfg, testOptions())

	t.Run("status error", func(t *testing.T) {
		_, err := client.FetchSerp(context.Background(), []SerpQuery{{Keyword: "a"}})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		require.Equal(t, "dataforseo", statusErr.Provider)
	})

	t.Run("batch over limit", func(t *testing.T) {
		_, err := client.FetchSerp(context.Background(), []SerpQuery{{Keyword: "a"}, {Keyword: "b"}, {Keyword: "c"}})
		require.Error(t, err)
	})

	t.Run("empty batch", func(t *testing.T) {
		tasks, err := client.FetchSerp(context.Background(), nil)
		require.NoError(t, err)
		require.Nil(t, tasks)
	})
}

func TestFathom_Aggregate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/aggregations", r.URL.Path)
		require.Equal(t, "Bearer fathom-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		require.Equal(t, "pageview", q.Get("entity"))
		require.Equal(t, "SITE", q.Get("entity_id"))
		require.Equal(t, "2024-05-01", q.Get("date_from"))
		require.Equal(t, "2024-05-01", q.Get("date_to"))

		if q.Get("field_grouping") == "pathname" {
			require.Equal(t, "visits:desc", q.Get("sort_by"))
			require.Equal(t, "20", q.Get("limit"))
			writeJSON(w, `[{"pathname":"/manhattan","visits":"40"},{"pathname":"/","visits":22}]`)
			return
		}

		if filters := q.Get("filters"); filters != "" {
			require.JSONEq(t, `[{"property":"pathname","operator":"is like","value":"/new-jersey*"}]`, filters)
			writeJSON(w, `[]`)
			return
		}

		writeJSON(w, `[{"pageviews":"150","visits":"100","uniques":"80","avg_duration":"61.5","bounce_rate":0.43}]`)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().Providers.Fathom
	cfg.BaseURL = server.URL
	cfg.APIKey = "fathom-key"
	cfg.SiteID = "SITE"
	client := NewFathom(cfg, testOptions())
	ctx := context.Background()

	agg, err := client.Aggregate(ctx, AggregateRequest{From: "2024-05-01", To: "2024-05-01"})
	require.NoError(t, err)
	require.EqualValues(t, 100, agg.Visits.Int())
	require.EqualValues(t, 150, agg.Pageviews.Int())
	require.InDelta(t, 61.5, agg.AvgDuration.Value, 0.001)
	require.InDelta(t, 0.43, *agg.BounceRate.Ptr(), 0.001)

	empty, err := client.Aggregate(ctx, AggregateRequest{From: "2024-05-01", To: "2024-05-01", PathPrefix: "/new-jersey"})
	require.NoError(t, err)
	require.False(t, empty.Visits.Valid)
	require.Nil(t, empty.BounceRate.Ptr())

	pages, err := client.TopPages(ctx, "2024-05-01", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "/manhattan", pages[0].Pathname)
	require.EqualValues(t, 22, pages[1].Visits.Int())
}

func TestBusinessProfile_DailyMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/locations/123:fetchMultiDailyMetricsTimeSeries", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, []string{"QUERIES_DIRECT", "CALL_CLICKS"}, q["dailyMetrics"])
		require.Equal(t, "2024", q.Get("dailyRange.start_date.year"))
		require.Equal(t, "5", q.Get("dailyRange.start_date.month"))
		require.Equal(t, "1", q.Get("dailyRange.end_date.day"))

		writeJSON(w, `{"multiDailyMetricTimeSeries":[{"dailyMetricTimeSeries":[
			{"dailyMetric":"QUERIES_DIRECT","timeSeries":{"datedValues":[{"date":{"year":2024,"month":5,"day":1},"value":"12"}]}},
			{"dailyMetric":"CALL_CLICKS","timeSeries":{"datedValues":[{"date":{"year":2024,"month":5,"day":1}}]}}
		]}]}`)
	}))
	defer server.Close()

	client := NewBusinessProfile(config.BusinessProfileConfig{BaseURL: server.URL}, testOptions(), server.Client())
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	series, err := client.DailyMetrics(context.Background(), "123", day, day, []string{"QUERIES_DIRECT", "CALL_CLICKS"})
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, "QUERIES_DIRECT", series[0].Metric)
	require.Equal(t, []DatedValue{{Date: "2024-05-01", Value: "12"}}, series[0].Values)
	require.Equal(t, "", series[1].Values[0].Value)
}

func TestSearchConsole_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/webmasters/v3/sites/https:%2F%2Fmuchnikelderlaw.com%2F/searchAnalytics/query", r.URL.EscapedPath())

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "2024-04-28", body["startDate"])
		require.Equal(t, "2024-04-28", body["endDate"])
		require.EqualValues(t, 1000, body["rowLimit"])
		require.Equal(t, []any{"query", "page"}, body["dimensions"])

		writeJSON(w, `{"rows":[
			{"keys":["elder law","https://muchnikelderlaw.com/manhattan/"],"clicks":3,"impressions":90,"ctr":0.033,"position":5.4},
			{"keys":["medicaid"],"clicks":0,"impressions":4,"ctr":0,"position":40}
		]}`)
	}))
	defer server.Close()

	cfg := config.SearchConsoleConfig{BaseURL: server.URL, SiteURL: "https://muchnikelderlaw.com/"}
	client := NewSearchConsole(cfg, testOptions(), server.Client())

	rows, err := client.Query(context.Background(), "2024-04-28", 1000)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "https://muchnikelderlaw.com/manhattan/", rows[0].Page)
	require.EqualValues(t, 3, rows[0].Clicks)
	require.Equal(t, "", rows[1].Page)
}

func TestYouTube_BatchesStatistics(t *testing.T) {
	var videoCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "yt-key", q.Get("key"))

		switch r.URL.Path {
		case "/youtube/v3/search":
			require.Equal(t, "CHAN", q.Get("channelId"))
			require.Equal(t, "date", q.Get("order"))
			require.Equal(t, "video", q.Get("type"))
			writeJSON(w, `{"items":[{"id":{"videoId":"v1"}},{"id":{"kind":"youtube#channel"}},{"id":{"videoId":"v2"}}]}`)
		case "/youtube/v3/videos":
			atomic.AddInt32(&videoCalls, 1)
			ids := strings.Split(q.Get("id"), ",")
			require.LessOrEqual(t, len(ids), 50)
			var items []string
			for _, id := range ids {
				items = append(items, `{"id":"`+id+`","snippet":{"title":"T"},"statistics":{"viewCount":"10","likeCount":"2"}}`)
			}
			writeJSON(w, `{"items":[`+strings.Join(items, ",")+`]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := config.YouTubeConfig{BaseURL: server.URL, APIKey: "yt-key", ChannelID: "CHAN", MaxResults: 50}
	client := NewYouTube(cfg, testOptions())
	ctx := context.Background()

	ids, err := client.ChannelVideoIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"v1", "v2"}, ids)

	many := make([]string, 120)
	for i := range many {
		many[i] = "id" + strings.Repeat("x", i%3) + string(rune('a'+i%26))
	}
	stats, err := client.VideoStatistics(ctx, many)
	require.NoError(t, err)
	require.Len(t, stats, 120)
	require.EqualValues(t, 3, atomic.LoadInt32(&videoCalls))
	require.EqualValues(t, 10, stats[0].ViewCount.Int())
	require.False(t, stats[0].CommentCount.Valid)
}

func TestBunny_ListVideosPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/library/LIB/videos", r.URL.Path)
		require.Equal(t, "bunny-key", r.Header.Get("AccessKey"))
		require.Equal(t, "2", r.URL.Query().Get("itemsPerPage"))

		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, `{"totalItems":3,"currentPage":1,"itemsPerPage":2,"items":[{"guid":"g1","views":5,"averageWatchTime":30},{"guid":"g2","views":1}]}`)
		case "2":
			writeJSON(w, `{"totalItems":3,"currentPage":2,"itemsPerPage":2,"items":[{"guid":"g3","views":9}]}`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
			writeJSON(w, `{"items":[]}`)
		}
	}))
	defer server.Close()

	cfg := config.BunnyConfig{BaseURL: server.URL, APIKey: "bunny-key", LibraryID: "LIB", ItemsPerPage: 2}
	client := NewBunny(cfg, testOptions())

	videos, err := client.ListVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 3)
	require.Equal(t, "g3", videos[2].GUID)
	require.InDelta(t, 30, videos[0].AverageWatchTime, 0.001)
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	opts := testOptions()
	opts.BaseURL = server.URL
	opts.BreakerFailures = 2
	opts.BreakerOpenDelay = time.Hour
	client := NewClient("flaky", opts)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := client.Do(ctx, http.MethodGet, "/x", nil, nil)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
	}

	err := client.Do(ctx, http.MethodGet, "/x", nil, nil)
	require.True(t, errors.Is(err, gobreaker.ErrOpenState), "expected open breaker, got %v", err)
	require.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `not json`)
	}))
	defer server.Close()

	opts := testOptions()
	opts.BaseURL = server.URL
	client := NewClient("broken", opts)

	var out map[string]any
	err := client.Do(context.Background(), http.MethodGet, "/", nil, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode")
}

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		value float64
	}{
		{`12`, true, 12},
		{`"12"`, true, 12},
		{`"0.43"`, true, 0.43},
		{`null`, false, 0},
		{`""`, false, 0},
		{`"n/a"`, false, 0},
	}
	for _, tt := range tests {
		var n Number
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
		}
		if n.Valid != tt.valid || n.Value != tt.value {
			t.Errorf("Unmarshal(%s) = %+v, want valid=%v value=%v", tt.in, n, tt.valid, tt.value)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.Wait(ctx, "https://api.dataforseo.com"); err != nil {
		t.Errorf("First request failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://api.dataforseo.com"); err != nil {
		t.Errorf("Second request failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Rate limiting not working, elapsed time: %v", elapsed)
	}

	start = time.Now()
	if err := limiter.Wait(ctx, "https://api.usefathom.com"); err != nil {
		t.Errorf("Different host request failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Different host was rate limited, elapsed time: %v", elapsed)
	}
}

func TestRateLimiterDisabledAndCancelled(t *testing.T) {
	disabled := NewRateLimiter(0)
	if err := disabled.Wait(context.Background(), "https://x"); err != nil {
		t.Errorf("Disabled limiter returned %v", err)
	}

	limiter := NewRateLimiter(time.Hour)
	limiter.SetHostDelay("slow.example", time.Hour)
	_ = limiter.Wait(context.Background(), "https://slow.example")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "https://slow.example"); err == nil {
		t.Error("Expected error when context expires before the next slot")
	}
}
