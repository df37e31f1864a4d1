package proxy

import (
	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/tokenizer"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Request log labels for requests that never reached a stream.
const (
	NoProvider    = "none"
	OutcomeFailed = "failed"
)

// logRequest counts tokens and writes the log row off the request path.
func (h *Handlers) logRequest(entry *storage.RequestLog, messages []types.ChatMessage, completion string) {
	if h.Storage == nil {
		return
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		if h.Tokenizer != nil {
			usage := tokenizer.CountExchange(h.Tokenizer, messages, completion)
			entry.PromptTokens = usage.PromptTokens
			entry.CompletionTokens = usage.CompletionTokens
		}

		if err := h.Storage.LogRequest(entry); err != nil {
			h.Logger.Warn("failed to write request log", "error", err, "request_id", entry.RequestID)
		}
	}()
}
