// Package proxy serves the /chat endpoint.
package proxy

import (
	"log/slog"
	"sync"

	"github.com/mandalnilabja/chatrelay/internal/metrics"
	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/tokenizer"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Handlers holds the dependencies for proxy HTTP handlers.
type Handlers struct {
	Router    *provider.Router
	Limits    types.Limits
	Metrics   metrics.Sink
	Storage   storage.Storage
	Tokenizer tokenizer.Tokenizer
	Logger    *slog.Logger

	pending sync.WaitGroup
}

// New creates a new instance of proxy handlers. store and tok may be nil,
// in which case request logs are not written.
func New(router *provider.Router, limits types.Limits, sink metrics.Sink, store storage.Storage, tok tokenizer.Tokenizer, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Router:    router,
		Limits:    limits,
		Metrics:   sink,
		Storage:   store,
		Tokenizer: tok,
		Logger:    logger,
	}
}

// Wait blocks until queued request logs are written.
func (h *Handlers) Wait() {
	h.pending.Wait()
}
