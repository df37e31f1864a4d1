package admin

import (
	"errors"
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/auth"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// CreateKeyRequest is the body of POST /admin/keys.
type CreateKeyRequest struct {
	Name string `json:"name"`
}

// CreateKeyResponse carries the plaintext key, shown only once.
type CreateKeyResponse struct {
	Success bool   `json:"success"`
	APIKey  string `json:"apiKey"`
}

// RevokeKeyRequest is the body of DELETE /admin/keys.
type RevokeKeyRequest struct {
	Key string `json:"key"`
}

// KeyPreview is a key as listed by GET /admin/keys.
type KeyPreview struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	CreatedAt    string  `json:"createdAt"`
	LastUsed     *string `json:"lastUsed"`
	RequestCount int64   `json:"requestCount"`
	Enabled      bool    `json:"enabled"`
}

// ListKeysResponse is the body of GET /admin/keys.
type ListKeysResponse struct {
	Success bool         `json:"success"`
	Keys    []KeyPreview `json:"keys"`
}

type successResponse struct {
	Success bool `json:"success"`
}

const isoMillis = "2006-01-02T15:04:05.000Z"

// CreateKey issues a new client key.
func (h *Handlers) CreateKey(w http.ResponseWriter, r *http.Request) {
	var req CreateKeyRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("Invalid request body"))
		return
	}

	key, err := h.Keys.Create(req.Name)
	if err != nil {
		h.Logger.Error("failed to create api key", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Internal server error"))
		return
	}

	h.Logger.Info("api key created", "name", req.Name, "key", storage.MaskKey(key))
	types.WriteJSON(w, http.StatusOK, CreateKeyResponse{Success: true, APIKey: key})
}

// ListKeys lists issued keys with their usage.
func (h *Handlers) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys := h.Keys.List()

	resp := ListKeysResponse{Success: true, Keys: make([]KeyPreview, 0, len(keys))}
	for _, k := range keys {
		resp.Keys = append(resp.Keys, preview(k))
	}
	types.WriteJSON(w, http.StatusOK, resp)
}

// RevokeKey disables a key.
func (h *Handlers) RevokeKey(w http.ResponseWriter, r *http.Request) {
	var req RevokeKeyRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("Invalid request body"))
		return
	}

	if err := h.Keys.Revoke(req.Key); err != nil {
		if errors.Is(err, auth.ErrKeyNotFound) {
			types.WriteError(w, http.StatusForbidden, types.ErrPermission("Key not found"))
			return
		}
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Internal server error"))
		return
	}

	h.Logger.Info("api key revoked", "key", storage.MaskKey(req.Key))
	types.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

func preview(k auth.KeyInfo) KeyPreview {
	p := KeyPreview{
		Key:          k.Prefix + "...",
		Name:         k.Name,
		CreatedAt:    k.CreatedAt.UTC().Format(isoMillis),
		RequestCount: k.RequestCount,
		Enabled:      k.Enabled,
	}
	if k.LastUsed != nil {
		s := k.LastUsed.UTC().Format(isoMillis)
		p.LastUsed = &s
	}
	return p
}

