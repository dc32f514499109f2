package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordJob(t *testing.T) {
	job := "test-record-job"

	RecordJob(job, 50*time.Millisecond, nil)
	RecordJob(job, 10*time.Millisecond, errors.New("boom"))
	RecordUnauthorized(job)

	if got := testutil.ToFloat64(JobRuns.WithLabelValues(job, "success")); got != 1 {
		t.Errorf("Expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(JobRuns.WithLabelValues(job, "failure")); got != 1 {
		t.Errorf("Expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(JobRuns.WithLabelValues(job, "unauthorized")); got != 1 {
		t.Errorf("Expected 1 unauthorized, got %v", got)
	}
	if got := testutil.ToFloat64(JobLastSuccess.WithLabelValues(job)); got == 0 {
		t.Error("Expected last success timestamp to be set")
	}
}

func TestRecordUpsertIgnoresEmpty(t *testing.T) {
	table := "test_table_empty"

	RecordUpsert(table, 0)
	RecordUpsert(table, 3)

	if got := testutil.ToFloat64(RowsUpserted.WithLabelValues(table)); got != 3 {
		t.Errorf("Expected 3 rows, got %v", got)
	}
}

func TestRecordProviderRequest(t *testing.T) {
	RecordProviderRequest("test-provider", "success", 20*time.Millisecond)
	RecordProviderRequest("test-provider", "rejected", 0)

	if got := testutil.ToFloat64(ProviderRequests.WithLabelValues("test-provider", "rejected")); got != 1 {
		t.Errorf("Expected 1 rejected request, got %v", got)
	}
}

func TestMetricGathering(t *testing.T) {
	RecordUnitFailure("test-gather", "manhattan")

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	for _, p := range problems {
		t.Logf("lint: %s: %s", p.Metric, p.Text)
	}
}
