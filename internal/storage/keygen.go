package storage

import (
	"crypto/rand"
	"math/big"
)

const (
	// APIKeyPrefix is the prefix for all chatrelay API keys
	APIKeyPrefix = "sk_"
	// APIKeyLength is the number of random characters after the prefix
	APIKeyLength = 32
	// APIKeyPrefixLen is the length of the display prefix (e.g. "sk_a1B2c3D")
	APIKeyPrefixLen = 10
)

// base62Alphabet contains characters for key generation (0-9, A-Z, a-z)
var base62Alphabet = []byte("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")

// GenerateAPIKey creates a new API key with format: sk_ + 32 base62 chars
func GenerateAPIKey() (string, error) {
	result := make([]byte, APIKeyLength)
	alphabetLen := big.NewInt(int64(len(base62Alphabet)))

	for i := range result {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		result[i] = base62Alphabet[idx.Int64()]
	}

	return APIKeyPrefix + string(result), nil
}

// ExtractKeyPrefix returns the first 10 chars of a key for display and lookup.
func ExtractKeyPrefix(key string) string {
	if len(key) < APIKeyPrefixLen {
		return key
	}
	return key[:APIKeyPrefixLen]
}

// MaskKey renders a key for listings and logs: display prefix plus "...".
func MaskKey(key string) string {
	return ExtractKeyPrefix(key) + "..."
}
