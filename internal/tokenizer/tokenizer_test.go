package tokenizer

import (
	"testing"
)

// Expected ranges hold for both exact cl100k counts and the offline estimate.

func TestCountTokens(t *testing.T) {
	tok := New()

	tests := []struct {
		name     string
		text     string
		minCount int
		maxCount int
	}{
		{"simple text", "Hello, world!", 3, 5},
		{"empty text", "", 0, 0},
		{"longer text", "The quick brown fox jumps over the lazy dog.", 8, 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			count := tok.CountTokens(tc.text)
			if count < tc.minCount || count > tc.maxCount {
				t.Errorf("CountTokens() = %d, want between %d and %d", count, tc.minCount, tc.maxCount)
			}
		})
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"héllo wörld", 3},
	}
	for _, tc := range tests {
		if got := estimate(tc.text); got != tc.want {
			t.Errorf("estimate(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestUnknownEncodingFallsBack(t *testing.T) {
	tok := NewWithEncoding("no_such_encoding")

	if tok.Err() == nil {
		t.Fatal("expected load error for unknown encoding")
	}
	if !tok.Estimated() {
		t.Error("expected estimated counts")
	}
	if got := tok.CountTokens("abcdefgh"); got != 2 {
		t.Errorf("CountTokens() = %d, want 2", got)
	}
}
