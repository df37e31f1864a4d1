// Package types provides the canonical chat types shared by the gateway and its providers.
package types

// Role constants for message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single conversation turn.
// It is never mutated after validation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is an ordered, non-empty conversation forwarded to a provider.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// NewTextMessage creates a simple text message.
func NewTextMessage(role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content}
}

// IsValidRole reports whether role is accepted on the /chat endpoint.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// First returns the first message, or a zero value for an empty request.
func (r *ChatRequest) First() ChatMessage {
	if r == nil || len(r.Messages) == 0 {
		return ChatMessage{}
	}
	return r.Messages[0]
}

// UserContent joins the content of every user message with newlines.
// Single-shot upstreams that accept one prompt use this.
func (r *ChatRequest) UserContent() string {
	var out []byte
	for _, m := range r.Messages {
		if m.Role != RoleUser {
			continue
		}
		if len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, m.Content...)
	}
	return string(out)
}
