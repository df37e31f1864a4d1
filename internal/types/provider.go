package types

import "context"

// Provider defines the interface every upstream adapter implements.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// Chat starts a completion for req.
	// It either returns a live stream or fails before any delta with an *UpstreamError.
	Chat(ctx context.Context, req *ChatRequest) (ChatStream, error)
}

// ChatStream is a lazy sequence of text deltas from one provider.
type ChatStream interface {
	// Recv returns the next non-empty delta, or io.EOF once the sequence ends.
	Recv() (string, error)

	// Close releases the upstream connection.
	// It is idempotent and may be called concurrently with a blocked Recv.
	Close() error
}
