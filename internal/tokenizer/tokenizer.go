// Package tokenizer estimates prompt and completion token counts for request logs.
package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Tokenizer counts tokens for relayed chat traffic.
type Tokenizer interface {
	// CountTokens counts tokens in a text string.
	CountTokens(text string) int

	// CountMessages counts prompt tokens for a slice of messages.
	CountMessages(messages []types.ChatMessage) int
}

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base"
	EncodingO200kBase  = "o200k_base"
)

// TiktokenTokenizer implements Tokenizer using tiktoken-go. The encoding is
// loaded on first use; if it cannot be loaded, counts fall back to a
// four-characters-per-token estimate.
type TiktokenTokenizer struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// New creates a tokenizer using cl100k_base.
func New() *TiktokenTokenizer {
	return NewWithEncoding(EncodingCL100kBase)
}

// NewWithEncoding creates a tokenizer for a named tiktoken encoding.
func NewWithEncoding(encoding string) *TiktokenTokenizer {
	return &TiktokenTokenizer{encoding: encoding}
}

func (t *TiktokenTokenizer) load() *tiktoken.Tiktoken {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding(t.encoding)
	})
	return t.enc
}

// Err reports why the encoding could not be loaded, if it could not.
func (t *TiktokenTokenizer) Err() error {
	t.load()
	return t.err
}

// Estimated reports whether counts are estimates rather than exact encodings.
func (t *TiktokenTokenizer) Estimated() bool {
	return t.load() == nil
}

// CountTokens counts tokens in a text string.
func (t *TiktokenTokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if enc := t.load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return estimate(text)
}

// estimate approximates one token per four characters, rounded up.
func estimate(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}
