package metrics

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
)

// providerStats accumulates counters for one provider.
type providerStats struct {
	mu            sync.Mutex
	requests      int64
	errors        int64
	aborted       int64
	totalDuration time.Duration
	lastUsed      time.Time
}

// ServiceSnapshot is the JSON view of one provider.
type ServiceSnapshot struct {
	Requests    int64   `json:"requests"`
	Errors      int64   `json:"errors"`
	Aborted     int64   `json:"aborted"`
	AvgDuration int64   `json:"avgDuration"`
	LastUsed    *string `json:"lastUsed"`
	SuccessRate string  `json:"successRate"`
}

// Snapshot is the JSON body served on /metrics.
type Snapshot struct {
	Uptime        int64                      `json:"uptime"`
	TotalRequests int64                      `json:"totalRequests"`
	Services      map[string]ServiceSnapshot `json:"services"`
}

// Collector implements Sink with in-memory aggregates and optional
// Prometheus export.
type Collector struct {
	stats   *haxmap.Map[string, *providerStats]
	started atomic.Int64
	prom    *Prometheus
	now     func() time.Time
}

// NewCollector creates a collector. prom may be nil.
func NewCollector(prom *Prometheus) *Collector {
	c := &Collector{
		stats: haxmap.New[string, *providerStats](),
		prom:  prom,
		now:   time.Now,
	}
	c.started.Store(c.now().UnixNano())
	return c
}

// Prometheus returns the Prometheus exporter, or nil.
func (c *Collector) Prometheus() *Prometheus {
	return c.prom
}

func (c *Collector) statsFor(provider string) *providerStats {
	s, _ := c.stats.GetOrCompute(provider, func() *providerStats {
		return &providerStats{}
	})
	return s
}

// RecordRequest records a completed or failed request.
func (c *Collector) RecordRequest(provider string, duration time.Duration, success bool) {
	s := c.statsFor(provider)
	s.mu.Lock()
	s.requests++
	s.totalDuration += duration
	s.lastUsed = c.now()
	if !success {
		s.errors++
	}
	s.mu.Unlock()

	if c.prom != nil {
		outcome := OutcomeSuccess
		if !success {
			outcome = OutcomeError
		}
		c.prom.observe(provider, outcome, duration)
	}
}

// RecordAborted records a request whose client disconnected.
func (c *Collector) RecordAborted(provider string, duration time.Duration) {
	s := c.statsFor(provider)
	s.mu.Lock()
	s.requests++
	s.aborted++
	s.totalDuration += duration
	s.lastUsed = c.now()
	s.mu.Unlock()

	if c.prom != nil {
		c.prom.observe(provider, OutcomeAborted, duration)
	}
}

// Snapshot returns the current aggregates.
func (c *Collector) Snapshot() Snapshot {
	started := time.Unix(0, c.started.Load())
	snap := Snapshot{
		Uptime:   int64(c.now().Sub(started) / time.Second),
		Services: make(map[string]ServiceSnapshot),
	}

	c.stats.ForEach(func(name string, s *providerStats) bool {
		s.mu.Lock()
		svc := ServiceSnapshot{
			Requests:    s.requests,
			Errors:      s.errors,
			Aborted:     s.aborted,
			SuccessRate: "0%",
		}
		if s.requests > 0 {
			svc.AvgDuration = int64(math.Round(float64(s.totalDuration.Milliseconds()) / float64(s.requests)))
			svc.SuccessRate = fmt.Sprintf("%.2f%%", float64(s.requests-s.errors)/float64(s.requests)*100)
		}
		if !s.lastUsed.IsZero() {
			ts := s.lastUsed.UTC().Format(time.RFC3339Nano)
			svc.LastUsed = &ts
		}
		s.mu.Unlock()

		snap.Services[name] = svc
		snap.TotalRequests += svc.Requests
		return true
	})

	return snap
}

// Reset clears all aggregates and restarts the uptime clock.
func (c *Collector) Reset() {
	var names []string
	c.stats.ForEach(func(name string, _ *providerStats) bool {
		names = append(names, name)
		return true
	})
	c.stats.Del(names...)
	c.started.Store(c.now().UnixNano())
}
