// Package admin serves key management and request log endpoints.
package admin

import (
	"log/slog"

	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/auth"
)

// Handlers holds the dependencies for admin HTTP handlers.
type Handlers struct {
	Keys    *auth.KeyStore
	Storage storage.Storage
	Logger  *slog.Logger
}

// New creates a new instance of admin handlers. store may be nil.
func New(keys *auth.KeyStore, store storage.Storage, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{Keys: keys, Storage: store, Logger: logger}
}
