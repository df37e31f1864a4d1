package storage

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}

	if !strings.HasPrefix(key, APIKeyPrefix) {
		t.Errorf("key should start with %q, got: %s", APIKeyPrefix, key)
	}

	// "sk_" (3) + 32 chars = 35
	if len(key) != len(APIKeyPrefix)+APIKeyLength {
		t.Errorf("expected key length %d, got %d", len(APIKeyPrefix)+APIKeyLength, len(key))
	}

	for i, c := range key[len(APIKeyPrefix):] {
		if !isBase62(byte(c)) {
			t.Errorf("invalid character at position %d: %c", i, c)
		}
	}
}

func TestGenerateAPIKeyUniqueness(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey failed on iteration %d: %v", i, err)
		}
		if seen[key] {
			t.Errorf("duplicate key generated: %s", key)
		}
		seen[key] = true
	}
}

func TestExtractKeyPrefix(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		expected string
	}{
		{"full key", "sk_a1B2c3D4e5F6g7H8i9J0k1L2m3N4o5P6", "sk_a1B2c3D"},
		{"exact prefix length", "sk_a1B2c3D", "sk_a1B2c3D"},
		{"shorter than prefix", "sk_abc", "sk_abc"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if result := ExtractKeyPrefix(tc.key); result != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("sk_a1B2c3D4e5F6"); got != "sk_a1B2c3D..." {
		t.Errorf("unexpected mask: %q", got)
	}
}

func isBase62(c byte) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z')
}
