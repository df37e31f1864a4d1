// Package app wires the gateway's components into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/config"
	"github.com/mandalnilabja/chatrelay/internal/metrics"
	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/tokenizer"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/admin"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/infra"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/proxy"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/auth"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/ratelimit"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// App is the assembled gateway.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Providers []types.Provider
	Router    *provider.Router
	Keys      *auth.KeyStore
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Collector
	Storage   storage.Storage
	Scheduler *Scheduler

	// MasterKeyGenerated is set when no master key was configured
	MasterKeyGenerated bool

	proxy  *proxy.Handlers
	server *Server
}

// New builds every component from cfg. The returned App owns the key store
// and request log store; Run releases them.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	masterKey := cfg.MasterAPIKey
	if masterKey == "" {
		key, err := storage.GenerateAPIKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate master key: %w", err)
		}
		masterKey = key
		a.MasterKeyGenerated = true
		logger.Warn("MASTER_API_KEY not set, generated temporary key", "key", storage.MaskKey(key))
	}

	keys, err := auth.NewKeyStore(auth.StoreOptions{MasterKey: masterKey, PublicKeys: cfg.PublicAPIKeys})
	if err != nil {
		return nil, err
	}
	a.Keys = keys

	prom := metrics.NewPrometheus()
	a.Metrics = metrics.NewCollector(prom)

	client := provider.NewHTTPClient(cfg.RequestTimeout)
	a.Providers, err = provider.NewProviders(cfg, client)
	if err != nil {
		keys.Close()
		return nil, err
	}

	state := provider.NewState(provider.NewStickyStore(cfg.StickyTTL))
	a.Router = provider.NewRouter(a.Providers, state, provider.Options{
		Strategy: cfg.SelectionStrategy,
		Retry: provider.RetryPolicy{
			Provider:  cfg.RetryProvider,
			Retries:   cfg.RetryCount,
			BaseDelay: cfg.RetryBaseDelay,
		},
		Logger: logger,
		OnFailure: func(name string, kind types.ErrorKind) {
			prom.RecordProviderError(name, string(kind))
		},
	})

	if cfg.RateLimitEnabled {
		a.Limiter = ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	if cfg.DBPath != "" {
		a.Storage, err = storage.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			keys.Close()
			return nil, fmt.Errorf("failed to open request log store: %w", err)
		}
	}

	a.Scheduler, err = NewScheduler(SchedulerOptions{
		Limiter:   a.Limiter,
		Sticky:    state.Sticky(),
		Storage:   a.Storage,
		Retention: retention(cfg.LogRetentionDays),
		Metrics:   prom,
		Logger:    logger,
	})
	if err != nil {
		a.release()
		return nil, err
	}

	a.proxy = proxy.New(a.Router, types.Limits{
		MaxMessages:      cfg.MaxMessagesPerRequest,
		MaxMessageLength: cfg.MaxMessageLength,
	}, a.Metrics, a.Storage, tokenizer.New(), logger)

	repo := handler.NewRepo(
		a.proxy,
		infra.New(provider.Names(a.Providers), cfg.RequireAuth, cfg.RateLimitEnabled, a.Metrics),
		admin.New(keys, a.Storage, logger),
	)

	h := NewRouter(repo, &RouterOptions{
		Keys:          keys,
		RequireAuth:   cfg.RequireAuth,
		Limiter:       a.Limiter,
		OnRateLimited: prom.RecordRateLimited,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
	})
	a.server = NewServer(cfg, h, logger)

	return a, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// pending request log writes before releasing resources.
func (a *App) Run(ctx context.Context) error {
	a.Scheduler.Start()
	defer a.release()
	defer a.Scheduler.Stop()

	err := a.server.Run(ctx)
	a.proxy.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) release() {
	a.Keys.Close()
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn("failed to close request log store", "error", err)
		}
	}
}

func retention(days int) time.Duration {
	if days <= 0 {
		return 0
	}
	return time.Duration(days) * 24 * time.Hour
}
