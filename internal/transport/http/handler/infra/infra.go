// Package infra serves health and metrics endpoints.
package infra

import (
	"time"

	"github.com/mandalnilabja/chatrelay/internal/metrics"
)

// Handlers holds the dependencies for infrastructure HTTP handlers.
type Handlers struct {
	Services         []string
	AuthEnabled      bool
	RateLimitEnabled bool
	Collector        *metrics.Collector

	now func() time.Time
}

// New creates a new instance of infrastructure handlers.
func New(services []string, authEnabled, rateLimitEnabled bool, collector *metrics.Collector) *Handlers {
	return &Handlers{
		Services:         services,
		AuthEnabled:      authEnabled,
		RateLimitEnabled: rateLimitEnabled,
		Collector:        collector,
		now:              time.Now,
	}
}
