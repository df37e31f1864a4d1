package types

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Limits bounds the size of an accepted chat request.
type Limits struct {
	MaxMessages      int
	MaxMessageLength int
}

// Worst-case encoded sizes used to bound the raw body: a code point outside
// the BMP escaped as a surrogate pair takes 12 bytes.
const (
	maxEscapedRuneBytes = 12
	messageOverhead     = 64
	bodyOverhead        = 1 << 10
)

// MaxBodyBytes is the largest raw body that can still hold a request at
// exactly these limits.
func (l Limits) MaxBodyBytes() int64 {
	perMessage := int64(l.MaxMessageLength)*maxEscapedRuneBytes + messageOverhead
	return int64(l.MaxMessages)*perMessage + bodyOverhead
}

// ValidationError is a client-side request problem, reported as 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidateChatRequest parses and checks a raw /chat body.
// Content length is measured in Unicode code points.
func ValidateChatRequest(raw []byte, limits Limits) (*ChatRequest, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, invalid("Request body is required")
	}
	if !gjson.ValidBytes(raw) {
		return nil, invalid("Invalid JSON body")
	}

	body := gjson.ParseBytes(raw)
	if !body.IsObject() {
		return nil, invalid("Request body must be a valid JSON object")
	}

	messages := body.Get("messages")
	if !messages.IsArray() {
		return nil, invalid("messages must be an array")
	}

	items := messages.Array()
	if len(items) == 0 {
		return nil, invalid("messages array cannot be empty")
	}
	if limits.MaxMessages > 0 && len(items) > limits.MaxMessages {
		return nil, invalid("messages array cannot exceed %d items", limits.MaxMessages)
	}

	req := &ChatRequest{Messages: make([]ChatMessage, 0, len(items))}
	for i, item := range items {
		if !item.IsObject() {
			return nil, invalid("messages[%d] must be an object", i)
		}

		role := item.Get("role")
		if role.Type != gjson.String || !IsValidRole(role.Str) {
			return nil, invalid("messages[%d].role must be 'user', 'assistant', or 'system'", i)
		}

		content := item.Get("content")
		if content.Type != gjson.String {
			return nil, invalid("messages[%d].content must be a string", i)
		}
		if limits.MaxMessageLength > 0 && utf8.RuneCountInString(content.Str) > limits.MaxMessageLength {
			return nil, invalid("messages[%d].content exceeds maximum length of %d", i, limits.MaxMessageLength)
		}

		req.Messages = append(req.Messages, ChatMessage{Role: role.Str, Content: content.Str})
	}

	return req, nil
}
