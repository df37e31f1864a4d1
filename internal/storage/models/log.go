// Package models holds the records persisted by the storage layer.
package models

import "time"

// RequestLog is one relayed chat request.
type RequestLog struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	Identity         string    `json:"identity,omitempty"`
	Provider         string    `json:"provider"`
	Outcome          string    `json:"outcome"`
	Attempts         int       `json:"attempts"`
	MessageCount     int       `json:"message_count"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	StatusCode       int       `json:"status_code"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// LogFilter contains parameters for filtering request logs
type LogFilter struct {
	Provider string
	Outcome  string
	Since    *time.Time
	Limit    int
	Offset   int
}
