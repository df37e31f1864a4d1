package storage

import (
	"errors"
	"strings"
	"testing"
)

// fastParams keeps hashing cheap in tests.
var fastParams = &Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashKeyFormat(t *testing.T) {
	hash, err := HashKey("sk_test", nil)
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("unexpected hash prefix: %s", hash)
	}
	if parts := strings.Split(hash, "$"); len(parts) != 6 {
		t.Errorf("expected 6 parts in hash, got %d", len(parts))
	}
}

func TestHashKeyUniqueness(t *testing.T) {
	hash1, err := HashKey("samekey", fastParams)
	if err != nil {
		t.Fatalf("first hash failed: %v", err)
	}
	hash2, err := HashKey("samekey", fastParams)
	if err != nil {
		t.Fatalf("second hash failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("hashing the same key twice should produce different hashes")
	}
}

func TestVerifyKey(t *testing.T) {
	hash, err := HashKey("sk_correct", fastParams)
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}

	valid, err := VerifyKey("sk_correct", hash)
	if err != nil || !valid {
		t.Errorf("correct key should verify, got valid=%v err=%v", valid, err)
	}

	valid, err = VerifyKey("sk_wrong", hash)
	if err != nil || valid {
		t.Errorf("wrong key should not verify, got valid=%v err=%v", valid, err)
	}
}

func TestVerifyKeyInvalidHash(t *testing.T) {
	testCases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong format", "notahash"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=65536"},
		{"invalid base64 salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifyKey("key", tc.hash); !errors.Is(err, ErrInvalidHash) {
				t.Errorf("expected ErrInvalidHash, got %v", err)
			}
		})
	}
}

func TestGenerateRandomBytes(t *testing.T) {
	for _, length := range []uint32{16, 32, 64} {
		b, err := GenerateRandomBytes(length)
		if err != nil {
			t.Fatalf("GenerateRandomBytes(%d) failed: %v", length, err)
		}
		if uint32(len(b)) != length {
			t.Errorf("expected %d bytes, got %d", length, len(b))
		}
	}
}

func BenchmarkVerifyKey(b *testing.B) {
	hash, _ := HashKey("sk_benchmark", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = VerifyKey("sk_benchmark", hash)
	}
}
