package provider

import (
	"sync"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// anonymousIdentity stands in for callers without an API key.
const anonymousIdentity = "anon"

// StickyEntry pins a conversation to a provider index until ExpiresAt.
type StickyEntry struct {
	ProviderIndex int
	ExpiresAt     time.Time
}

// StickyStore maps conversation fingerprints to provider indexes.
// Expired entries are removed when read; Sweep clears the rest.
type StickyStore struct {
	mu      sync.Mutex
	entries map[string]StickyEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewStickyStore creates a store whose entries live for ttl.
func NewStickyStore(ttl time.Duration) *StickyStore {
	return &StickyStore{
		entries: make(map[string]StickyEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the pinned provider index while the entry is live.
func (s *StickyStore) Get(key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	if !s.now().Before(entry.ExpiresAt) {
		delete(s.entries, key)
		return 0, false
	}
	return entry.ProviderIndex, true
}

// Set pins key to index with a fresh expiry, replacing any existing entry.
func (s *StickyStore) Set(key string, index int) {
	s.mu.Lock()
	s.entries[key] = StickyEntry{ProviderIndex: index, ExpiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

// Sweep removes expired entries and returns how many were dropped.
func (s *StickyStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *StickyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Fingerprint derives the sticky key from the caller and the first message.
func Fingerprint(identity string, req *types.ChatRequest) string {
	if identity == "" {
		identity = anonymousIdentity
	}
	first := req.First()
	return identity + "|" + first.Role + "|" + first.Content
}
