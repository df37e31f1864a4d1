package tokenizer

import "github.com/mandalnilabja/chatrelay/internal/types"

const (
	// Per-message overhead tokens: <|start|>role<|end|>
	messageOverhead = 3

	// Reply priming tokens (assistant response start)
	replyPrimingTokens = 3
)

// CountMessages counts prompt tokens for a slice of messages.
func (t *TiktokenTokenizer) CountMessages(messages []types.ChatMessage) int {
	total := replyPrimingTokens
	for _, msg := range messages {
		total += t.CountTokens(msg.Role) + t.CountTokens(msg.Content) + messageOverhead
	}
	return total
}

// Usage is the token estimate for one relayed exchange.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// CountExchange counts the prompt messages and the relayed completion text.
func CountExchange(t Tokenizer, messages []types.ChatMessage, completion string) Usage {
	return Usage{
		PromptTokens:     t.CountMessages(messages),
		CompletionTokens: t.CountTokens(completion),
	}
}
