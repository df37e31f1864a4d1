package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Error messages written by the auth middleware.
const (
	msgKeyRequired    = "API key required. Use Authorization: Bearer YOUR_KEY or X-API-Key header"
	msgInvalidKey     = "Invalid or disabled API key"
	msgMasterRequired = "Master API key required"
	msgInvalidMaster  = "Invalid master key"
)

// ExtractKey reads the API key from Authorization: Bearer or X-API-Key.
func ExtractKey(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if key := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); key != "" {
			return key
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// Gate authenticates client requests. A validated key is placed on the
// request context so downstream rate limiting and routing can use it. When
// required is false every request passes anonymously.
func Gate(store *KeyStore, required bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			key := ExtractKey(r)
			if key == "" {
				types.WriteError(w, http.StatusUnauthorized, types.ErrAuthentication(msgKeyRequired))
				return
			}
			if _, ok := store.Validate(key); !ok {
				logger.Warn("rejected api key", "key", storage.MaskKey(key))
				types.WriteError(w, http.StatusForbidden, types.ErrPermission(msgInvalidKey))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithKey(r.Context(), key)))
		})
	}
}

// Master requires the master key.
func Master(store *KeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ExtractKey(r)
			if key == "" {
				types.WriteError(w, http.StatusUnauthorized, types.ErrAuthentication(msgMasterRequired))
				return
			}
			if !store.IsMaster(key) {
				types.WriteError(w, http.StatusForbidden, types.ErrPermission(msgInvalidMaster))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MasterQuiet requires the master key but answers 401 for both missing and
// wrong keys. Used on the metrics endpoints.
func MasterQuiet(store *KeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.IsMaster(ExtractKey(r)) {
				types.WriteError(w, http.StatusUnauthorized, types.ErrAuthentication(msgMasterRequired))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
