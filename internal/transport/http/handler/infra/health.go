package infra

import (
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/types"
	"github.com/mandalnilabja/chatrelay/internal/version"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status           string   `json:"status"`
	Services         []string `json:"services"`
	AuthEnabled      bool     `json:"authEnabled"`
	RateLimitEnabled bool     `json:"rateLimitEnabled"`
	Version          string   `json:"version"`
	Timestamp        string   `json:"timestamp"`
}

// HealthCheck reports the configured providers and gateway features.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	services := h.Services
	if services == nil {
		services = []string{}
	}
	types.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		Services:         services,
		AuthEnabled:      h.AuthEnabled,
		RateLimitEnabled: h.RateLimitEnabled,
		Version:          version.Version,
		Timestamp:        h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

// Metrics returns the per-provider aggregates.
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, h.Collector.Snapshot())
}

// Prometheus serves the Prometheus exposition, or 404 when disabled.
func (h *Handlers) Prometheus(w http.ResponseWriter, r *http.Request) {
	prom := h.Collector.Prometheus()
	if prom == nil {
		types.WriteError(w, http.StatusNotFound, types.ErrNotFound("Not found"))
		return
	}
	prom.Handler().ServeHTTP(w, r)
}
