package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for chatrelay_requests_total.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeAborted = "aborted"
)

const namespace = "chatrelay"

// Prometheus exports gateway metrics on a private registry.
//
// Metrics:
//   - chatrelay_requests_total: relayed requests by provider and outcome
//   - chatrelay_request_duration_seconds: request duration by provider
//   - chatrelay_provider_errors_total: failed dispatch attempts by provider and error kind
//   - chatrelay_rate_limited_total: requests rejected by the rate limiter
//   - chatrelay_sticky_entries: sticky routing entries held in memory
type Prometheus struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	providerErrors *prometheus.CounterVec
	rateLimited    prometheus.Counter
	stickyEntries  prometheus.Gauge
}

// NewPrometheus creates and registers all metrics.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Relayed chat requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Chat request duration including the full stream",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),

		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Failed provider attempts during dispatch",
			},
			[]string{"provider", "kind"},
		),

		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the gateway rate limiter",
		}),

		stickyEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sticky_entries",
			Help:      "Sticky routing entries held in memory",
		}),
	}

	p.registry.MustRegister(
		p.requests,
		p.duration,
		p.providerErrors,
		p.rateLimited,
		p.stickyEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

func (p *Prometheus) observe(provider, outcome string, d time.Duration) {
	p.requests.WithLabelValues(provider, outcome).Inc()
	p.duration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordProviderError counts one failed dispatch attempt.
func (p *Prometheus) RecordProviderError(provider, kind string) {
	p.providerErrors.WithLabelValues(provider, kind).Inc()
}

// RecordRateLimited counts one rejected request.
func (p *Prometheus) RecordRateLimited() {
	p.rateLimited.Inc()
}

// SetStickyEntries updates the sticky entry gauge.
func (p *Prometheus) SetStickyEntries(n int) {
	p.stickyEntries.Set(float64(n))
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
