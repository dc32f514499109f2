package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/masahif/seodash/internal/config"
)

// Business Profile daily metrics collected per location
var GBPDailyMetrics = []string{
	"QUERIES_DIRECT",
	"QUERIES_INDIRECT",
	"CALL_CLICKS",
	"WEBSITE_CLICKS",
	"BUSINESS_DIRECTION_REQUESTS",
}

// MetricSeries is the time series of one daily metric
type MetricSeries struct {
	Metric string
	Values []DatedValue
}

// DatedValue is one day of a metric. Value is a decimal string and may be empty.
type DatedValue struct {
	Date  string
	Value string
}

type gbpDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type gbpResponse struct {
	MultiDailyMetricTimeSeries []struct {
		DailyMetricTimeSeries []struct {
			DailyMetric string `json:"dailyMetric"`
			TimeSeries  struct {
				DatedValues []struct {
					Date  gbpDate `json:"date"`
					Value string  `json:"value"`
				} `json:"datedValues"`
			} `json:"timeSeries"`
		} `json:"dailyMetricTimeSeries"`
	} `json:"multiDailyMetricTimeSeries"`
}

// BusinessProfile is the Business Profile Performance API client
type BusinessProfile struct {
	client *Client
}

// NewBusinessProfile creates the client. httpClient must carry OAuth credentials.
func NewBusinessProfile(cfg config.BusinessProfileConfig, opts Options, httpClient *http.Client) *BusinessProfile {
	opts.BaseURL = cfg.BaseURL
	opts.HTTPClient = httpClient
	return &BusinessProfile{client: NewClient("gbp", opts)}
}

// DailyMetrics fetches the given metrics for a profile over [start, end]
func (b *BusinessProfile) DailyMetrics(ctx context.Context, profile string, start, end time.Time, metrics []string) ([]MetricSeries, error) {
	if !strings.HasPrefix(profile, "locations/") {
		profile = "locations/" + profile
	}

	query := url.Values{}
	for _, m := range metrics {
		query.Add("dailyMetrics", m)
	}
	setDate := func(prefix string, t time.Time) {
		query.Set(prefix+".year", strconv.Itoa(t.Year()))
		query.Set(prefix+".month", strconv.Itoa(int(t.Month())))
		query.Set(prefix+".day", strconv.Itoa(t.Day()))
	}
	setDate("dailyRange.start_date", start)
	setDate("dailyRange.end_date", end)

	var resp gbpResponse
	err := b.client.Do(ctx, http.MethodGet, "/v1/"+profile+":fetchMultiDailyMetricsTimeSeries", func(r *resty.Request) {
		r.SetQueryParamsFromValues(query)
	}, &resp)
	if err != nil {
		return nil, err
	}

	var series []MetricSeries
	for _, multi := range resp.MultiDailyMetricTimeSeries {
		for _, ts := range multi.DailyMetricTimeSeries {
			s := MetricSeries{Metric: ts.DailyMetric}
			for _, dv := range ts.TimeSeries.DatedValues {
				s.Values = append(s.Values, DatedValue{
					Date:  time.Date(dv.Date.Year, time.Month(dv.Date.Month), dv.Date.Day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly),
					Value: dv.Value,
				})
			}
			series = append(series, s)
		}
	}
	return series, nil
}
