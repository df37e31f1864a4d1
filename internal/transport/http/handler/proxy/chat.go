package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/metrics"
	"github.com/mandalnilabja/chatrelay/internal/relay"
	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/auth"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Chat validates the conversation, dispatches it to a provider and relays
// the provider's deltas to the client as server-sent events.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	key := auth.KeyFromContext(ctx)

	body, err := shared.ReadBodyLimit(w, r, max(shared.MaxBodyBytes, h.Limits.MaxBodyBytes()))
	if err != nil {
		if errors.Is(err, shared.ErrBodyTooLarge) {
			types.WriteError(w, http.StatusRequestEntityTooLarge, types.NewAPIError("Request body too large", http.StatusRequestEntityTooLarge))
			return
		}
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("Invalid request body"))
		return
	}

	req, err := types.ValidateChatRequest(body, h.Limits)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(verr.Message))
			return
		}
		h.Logger.Error("validation failed unexpectedly", "error", err, "request_id", requestID)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Internal server error"))
		return
	}

	d, err := h.Router.Dispatch(ctx, key, req)
	if err != nil {
		h.dispatchFailed(w, r, req, err, start)
		return
	}

	h.Logger.Debug("dispatched chat request",
		"provider", d.Provider,
		"attempts", d.Attempts,
		"messages", len(req.Messages),
		"request_id", requestID,
	)

	out := relay.New(w, d.Stream, d.Provider, relay.Options{
		Start:       start,
		CaptureText: h.Storage != nil,
	}).Run(ctx)

	outcome := h.record(out)
	if out.State == relay.StateErrored {
		h.Logger.Warn("stream failed mid-response",
			"provider", d.Provider,
			"error", out.Err,
			"deltas", out.Deltas,
			"request_id", requestID,
		)
	}

	errMsg := ""
	if out.Err != nil {
		errMsg = out.Err.Error()
	}
	h.logRequest(&storage.RequestLog{
		RequestID:    requestID,
		Identity:     maskedIdentity(key),
		Provider:     d.Provider,
		Outcome:      outcome,
		Attempts:     d.Attempts,
		MessageCount: len(req.Messages),
		StatusCode:   http.StatusOK,
		ErrorMessage: errMsg,
		DurationMs:   out.Duration.Milliseconds(),
	}, req.Messages, out.Text)
}

// record reports a relay outcome to the metrics sink and returns its label.
func (h *Handlers) record(out relay.Outcome) string {
	switch out.State {
	case relay.StateCompleted:
		h.Metrics.RecordRequest(out.Provider, out.Duration, true)
		return metrics.OutcomeSuccess
	case relay.StateAborted:
		h.Metrics.RecordAborted(out.Provider, out.Duration)
		return metrics.OutcomeAborted
	default:
		h.Metrics.RecordRequest(out.Provider, out.Duration, false)
		return metrics.OutcomeError
	}
}

// dispatchFailed answers a request no provider could serve.
func (h *Handlers) dispatchFailed(w http.ResponseWriter, r *http.Request, req *types.ChatRequest, err error, start time.Time) {
	requestID := middleware.GetRequestID(r.Context())

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.Logger.Info("client went away during dispatch", "request_id", requestID)
		return
	}

	var apf *types.AllProvidersFailedError
	if !errors.As(err, &apf) {
		h.Logger.Error("dispatch failed", "error", err, "request_id", requestID)
		types.WriteError(w, http.StatusInternalServerError, types.ErrServer("Internal server error"))
		return
	}

	h.Logger.Error("all providers failed",
		"providers", len(apf.Failures),
		"error", apf.Error(),
		"request_id", requestID,
	)
	types.WriteError(w, http.StatusBadGateway, types.ErrBadGateway(apf.Error()))

	h.logRequest(&storage.RequestLog{
		RequestID:    requestID,
		Identity:     maskedIdentity(auth.KeyFromContext(r.Context())),
		Provider:     NoProvider,
		Outcome:      OutcomeFailed,
		Attempts:     len(apf.Failures),
		MessageCount: len(req.Messages),
		StatusCode:   http.StatusBadGateway,
		ErrorMessage: apf.Error(),
		DurationMs:   time.Since(start).Milliseconds(),
	}, req.Messages, "")
}

func maskedIdentity(key string) string {
	if key == "" {
		return ""
	}
	return storage.MaskKey(key)
}
