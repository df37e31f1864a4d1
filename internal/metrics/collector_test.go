package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(nil)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.started.Store(now.Add(-90 * time.Second).UnixNano())

	c.RecordRequest("groq", 100*time.Millisecond, true)
	c.RecordRequest("groq", 201*time.Millisecond, false)
	c.RecordRequest("groq", 300*time.Millisecond, true)
	c.RecordAborted("gemini", 50*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, int64(90), snap.Uptime)
	assert.Equal(t, int64(4), snap.TotalRequests)

	groq := snap.Services["groq"]
	assert.Equal(t, int64(3), groq.Requests)
	assert.Equal(t, int64(1), groq.Errors)
	assert.Equal(t, int64(200), groq.AvgDuration)
	assert.Equal(t, "66.67%", groq.SuccessRate)
	require.NotNil(t, groq.LastUsed)
	assert.Equal(t, "2026-01-02T03:04:05Z", *groq.LastUsed)

	gemini := snap.Services["gemini"]
	assert.Equal(t, int64(1), gemini.Aborted)
	assert.Equal(t, int64(0), gemini.Errors)
	assert.Equal(t, "100.00%", gemini.SuccessRate)
}

func TestCollector_Reset(t *testing.T) {
	c := NewCollector(nil)
	c.RecordRequest("groq", time.Millisecond, true)
	c.Reset()

	snap := c.Snapshot()
	assert.Empty(t, snap.Services)
	assert.Zero(t, snap.TotalRequests)
}

func TestPrometheus_Export(t *testing.T) {
	p := NewPrometheus()
	c := NewCollector(p)

	c.RecordRequest("groq", time.Second, true)
	c.RecordRequest("groq", time.Second, false)
	c.RecordAborted("groq", time.Second)
	p.RecordProviderError("openrouter", "rate_limited")
	p.RecordRateLimited()
	p.SetStickyEntries(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("groq", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("groq", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("groq", OutcomeAborted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.providerErrors.WithLabelValues("openrouter", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.rateLimited))
	assert.Equal(t, 7.0, testutil.ToFloat64(p.stickyEntries))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `chatrelay_requests_total{outcome="success",provider="groq"} 1`)
	assert.Contains(t, rec.Body.String(), "chatrelay_sticky_entries 7")
}
