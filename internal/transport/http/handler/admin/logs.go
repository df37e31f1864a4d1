package admin

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// LogsResponse is the body of GET /admin/logs.
type LogsResponse struct {
	Success bool                  `json:"success"`
	Logs    []*storage.RequestLog `json:"logs"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// GetRequestLogs lists recent request logs, newest first.
// Query: limit, offset, provider, outcome, since (RFC 3339).
func (h *Handlers) GetRequestLogs(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		types.WriteError(w, http.StatusNotFound, types.ErrNotFound("Request logging is disabled"))
		return
	}

	filter, err := parseLogFilter(r)
	if err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(err.Error()))
		return
	}

	logs, err := h.Storage.GetRequestLogs(filter)
	if err != nil {
		h.Logger.Error("failed to read request logs", "error", err)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Internal server error"))
		return
	}
	if logs == nil {
		logs = []*storage.RequestLog{}
	}

	types.WriteJSON(w, http.StatusOK, LogsResponse{
		Success: true,
		Logs:    logs,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func parseLogFilter(r *http.Request) (storage.LogFilter, error) {
	q := r.URL.Query()
	filter := storage.LogFilter{
		Provider: q.Get("provider"),
		Outcome:  q.Get("outcome"),
		Limit:    shared.QueryInt(r, "limit", defaultLogLimit),
		Offset:   shared.QueryInt(r, "offset", 0),
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultLogLimit
	}
	if filter.Limit > maxLogLimit {
		filter.Limit = maxLogLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, &types.ValidationError{Message: "since must be an RFC 3339 timestamp"}
		}
		filter.Since = &since
	}

	return filter, nil
}
