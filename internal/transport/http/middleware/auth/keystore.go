// Package auth provides the API key store and authentication middleware.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/mandalnilabja/chatrelay/internal/storage"
)

// DefaultKeyName is used when a key is created without a name.
const DefaultKeyName = "Unnamed Key"

// verifiedTTL bounds how long a verified key skips the argon2 check.
const verifiedTTL = 5 * time.Minute

// ErrKeyNotFound is returned when revoking an unknown key.
var ErrKeyNotFound = errors.New("key not found")

// KeyInfo describes one issued API key. The raw key is never stored.
type KeyInfo struct {
	Prefix       string
	Name         string
	CreatedAt    time.Time
	LastUsed     *time.Time
	RequestCount int64
	Enabled      bool
}

// keyEntry is the stored form of a key.
type keyEntry struct {
	hash string

	mu   sync.Mutex
	info KeyInfo
}

func (e *keyEntry) snapshot() KeyInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	info := e.info
	if e.info.LastUsed != nil {
		t := *e.info.LastUsed
		info.LastUsed = &t
	}
	return info
}

// StoreOptions configures a KeyStore.
type StoreOptions struct {
	MasterKey  string
	PublicKeys []string

	// Params defaults to storage.DefaultArgon2Params
	Params *storage.Argon2Params
}

// KeyStore holds API keys in memory as argon2id hashes indexed by display
// prefix. Verified keys are cached so the hash runs once per TTL.
type KeyStore struct {
	master []byte
	params *storage.Argon2Params

	mu      sync.RWMutex
	entries map[string][]*keyEntry

	verified *ristretto.Cache[string, *keyEntry]
	now      func() time.Time
}

// NewKeyStore creates a store seeded with the configured public keys,
// named "Public Key N" in order.
func NewKeyStore(opts StoreOptions) (*KeyStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *keyEntry]{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache: %w", err)
	}

	s := &KeyStore{
		master:   []byte(opts.MasterKey),
		params:   opts.Params,
		entries:  make(map[string][]*keyEntry),
		verified: cache,
		now:      time.Now,
	}
	if s.params == nil {
		s.params = storage.DefaultArgon2Params()
	}

	for i, key := range opts.PublicKeys {
		if key == "" {
			continue
		}
		if err := s.add(key, fmt.Sprintf("Public Key %d", i+1)); err != nil {
			cache.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases the verification cache.
func (s *KeyStore) Close() {
	s.verified.Close()
}

// IsMaster reports whether key is the configured master key.
func (s *KeyStore) IsMaster(key string) bool {
	if len(s.master) == 0 || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), s.master) == 1
}

// HasMaster reports whether a master key is configured.
func (s *KeyStore) HasMaster() bool {
	return len(s.master) > 0
}

// Create issues a new key and returns it. This is the only time the raw key
// is available.
func (s *KeyStore) Create(name string) (string, error) {
	if name == "" {
		name = DefaultKeyName
	}

	key, err := storage.GenerateAPIKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	if err := s.add(key, name); err != nil {
		return "", err
	}
	return key, nil
}

func (s *KeyStore) add(key, name string) error {
	hash, err := storage.HashKey(key, s.params)
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	prefix := storage.ExtractKeyPrefix(key)
	entry := &keyEntry{
		hash: hash,
		info: KeyInfo{
			Prefix:    prefix,
			Name:      name,
			CreatedAt: s.now(),
			Enabled:   true,
		},
	}

	s.mu.Lock()
	s.entries[prefix] = append(s.entries[prefix], entry)
	s.mu.Unlock()
	return nil
}

// lookup finds the entry matching key, consulting the cache first.
func (s *KeyStore) lookup(key string) *keyEntry {
	if key == "" {
		return nil
	}
	if e, ok := s.verified.Get(key); ok {
		return e
	}

	s.mu.RLock()
	candidates := s.entries[storage.ExtractKeyPrefix(key)]
	s.mu.RUnlock()

	for _, e := range candidates {
		if ok, err := storage.VerifyKey(key, e.hash); err == nil && ok {
			s.verified.SetWithTTL(key, e, 1, verifiedTTL)
			s.verified.Wait()
			return e
		}
	}
	return nil
}

// Validate checks a client key, recording usage on success. Disabled and
// unknown keys are rejected. The master key is not a client key.
func (s *KeyStore) Validate(key string) (*KeyInfo, bool) {
	e := s.lookup(key)
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	if !e.info.Enabled {
		e.mu.Unlock()
		return nil, false
	}
	now := s.now()
	e.info.LastUsed = &now
	e.info.RequestCount++
	e.mu.Unlock()

	info := e.snapshot()
	return &info, true
}

// Revoke disables a key. Revoked keys stay listed.
func (s *KeyStore) Revoke(key string) error {
	e := s.lookup(key)
	if e == nil {
		return ErrKeyNotFound
	}

	e.mu.Lock()
	e.info.Enabled = false
	e.mu.Unlock()

	s.verified.Del(key)
	return nil
}

// List returns all keys, oldest first.
func (s *KeyStore) List() []KeyInfo {
	s.mu.RLock()
	var out []KeyInfo
	for _, bucket := range s.entries {
		for _, e := range bucket {
			out = append(out, e.snapshot())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of issued keys.
func (s *KeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, bucket := range s.entries {
		n += len(bucket)
	}
	return n
}
