package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordRequestAccumulatesCountAndLatency(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordRequest("/api/v1/tickets", "GET", 200, 20*time.Millisecond)
	metrics.RecordRequest("/api/v1/tickets", "GET", 200, 30*time.Millisecond)
	metrics.RecordRequest("/api/v1/tickets", "GET", 404, 5*time.Millisecond)

	count, total := metrics.RequestStats("/api/v1/tickets", "GET", 200)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 50*time.Millisecond, total)

	count, total = metrics.RequestStats("/api/v1/tickets", "GET", 404)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 5*time.Millisecond, total)

	count, total = metrics.RequestStats("/api/v1/tickets", "POST", 200)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, time.Duration(0), total)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics

	metrics.RecordRequest("/health/live", "GET", 200, time.Millisecond)
	metrics.RecordError("/health/live", "GET", "INTERNAL_ERROR")

	count, total := metrics.RequestStats("/health/live", "GET", 200)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, time.Duration(0), total)
}
