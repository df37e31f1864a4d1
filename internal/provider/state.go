package provider

import "sync/atomic"

// State is the routing state shared by every dispatch: the round-robin
// cursor and the sticky store.
type State struct {
	cursor atomic.Int64
	sticky *StickyStore
}

// NewState creates routing state around a sticky store.
func NewState(sticky *StickyStore) *State {
	return &State{sticky: sticky}
}

// Cursor returns the index the next fresh request starts at.
func (s *State) Cursor() int {
	return int(s.cursor.Load())
}

// Sticky returns the sticky store.
func (s *State) Sticky() *StickyStore {
	return s.sticky
}

// advance moves the cursor to the successor of the provider that served a request.
func (s *State) advance(served, n int) {
	s.cursor.Store(int64((served + 1) % n))
}
