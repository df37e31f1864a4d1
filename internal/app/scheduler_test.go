package app

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandalnilabja/chatrelay/internal/metrics"
	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/ratelimit"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RegistersOnlyConfiguredJobs(t *testing.T) {
	s, err := NewScheduler(SchedulerOptions{Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Jobs())

	s, err = NewScheduler(SchedulerOptions{
		Limiter: ratelimit.New(1, time.Minute),
		Sticky:  provider.NewStickyStore(time.Minute),
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Jobs())

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestScheduler_CleanupLimiter(t *testing.T) {
	limiter := ratelimit.New(5, -time.Second)
	limiter.Check("a")
	limiter.Check("b")
	require.Equal(t, 2, limiter.Len())

	s, err := NewScheduler(SchedulerOptions{Limiter: limiter, Logger: quietLogger()})
	require.NoError(t, err)
	s.CleanupLimiter()

	assert.Equal(t, 0, limiter.Len())
}

func TestScheduler_SweepStickyUpdatesGauge(t *testing.T) {
	expired := provider.NewStickyStore(-time.Second)
	expired.Set("gone", 0)

	prom := metrics.NewPrometheus()
	s, err := NewScheduler(SchedulerOptions{Sticky: expired, Metrics: prom, Logger: quietLogger()})
	require.NoError(t, err)
	s.SweepSticky()

	assert.Equal(t, 0, expired.Len())

	live := provider.NewStickyStore(time.Hour)
	live.Set("a", 0)
	live.Set("b", 1)
	s, err = NewScheduler(SchedulerOptions{Sticky: live, Metrics: prom, Logger: quietLogger()})
	require.NoError(t, err)
	s.SweepSticky()

	assert.Equal(t, 2, live.Len())
	expected := `
# HELP chatrelay_sticky_entries Sticky routing entries held in memory
# TYPE chatrelay_sticky_entries gauge
chatrelay_sticky_entries 2
`
	assert.NoError(t, testutil.GatherAndCompare(prom.Registry(), strings.NewReader(expected), "chatrelay_sticky_entries"))
}

func TestScheduler_PruneLogs(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.LogRequest(&storage.RequestLog{RequestID: "old", Provider: "groq", Outcome: "success"}))

	s, err := NewScheduler(SchedulerOptions{Storage: store, Retention: 24 * time.Hour, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Jobs())

	s.PruneLogs()
	logs, err := store.GetRequestLogs(storage.LogFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	s.PruneLogs()
	logs, err = store.GetRequestLogs(storage.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestRetention(t *testing.T) {
	assert.Equal(t, time.Duration(0), retention(0))
	assert.Equal(t, 72*time.Hour, retention(3))
}
