package app

import (
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/auth"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/ratelimit"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Keys        *auth.KeyStore
	RequireAuth bool

	// Limiter is nil when rate limiting is disabled
	Limiter       *ratelimit.Limiter
	OnRateLimited func()

	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter creates the HTTP router with all gateway routes and the global
// middleware chain applied. Requests matching no route, including known
// paths with another method, get a JSON 404.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	// Chat: key gate, then the rate limiter keyed on the gated identity
	chat := []func(http.Handler) http.Handler{auth.Gate(opts.Keys, opts.RequireAuth, logger)}
	if opts.Limiter != nil {
		chat = append(chat, ratelimit.Middleware(opts.Limiter, opts.OnRateLimited))
	}
	mux.Handle("POST /chat", middleware.Chain(http.HandlerFunc(repo.Proxy.Chat), chat...))

	mux.HandleFunc("GET /health", repo.Infra.HealthCheck)

	// Metrics are open unless auth is enabled
	metricsGate := func(h http.HandlerFunc) http.Handler { return h }
	if opts.RequireAuth {
		quiet := auth.MasterQuiet(opts.Keys)
		metricsGate = func(h http.HandlerFunc) http.Handler { return quiet(h) }
	}
	mux.Handle("GET /metrics", metricsGate(repo.Infra.Metrics))
	mux.Handle("GET /metrics/prometheus", metricsGate(repo.Infra.Prometheus))

	registerAdminRoutes(mux, repo, opts)

	mux.HandleFunc("/", shared.NotFound)

	// Order: outermost first
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogger(logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.Recovery(logger),
	)
}

// registerAdminRoutes adds the master-key protected admin API.
func registerAdminRoutes(mux *http.ServeMux, repo *handler.Repo, opts *RouterOptions) {
	master := auth.Master(opts.Keys)
	withAuth := func(h http.HandlerFunc) http.Handler {
		return master(h)
	}

	mux.Handle("POST /admin/keys", withAuth(repo.Admin.CreateKey))
	mux.Handle("GET /admin/keys", withAuth(repo.Admin.ListKeys))
	mux.Handle("DELETE /admin/keys", withAuth(repo.Admin.RevokeKey))

	mux.Handle("GET /admin/logs", withAuth(repo.Admin.GetRequestLogs))
}
