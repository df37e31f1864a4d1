package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/config"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// errNoStream guards against adapters that return neither a stream nor an error.
var errNoStream = errors.New("provider returned no stream")

// FailureFunc is notified of every failed provider attempt.
type FailureFunc func(provider string, kind types.ErrorKind)

// Options configures a Router.
type Options struct {
	// Strategy is config.StrategyRoundRobin or config.StrategySticky
	Strategy string
	Retry    RetryPolicy
	Logger   *slog.Logger

	// OnFailure is optional
	OnFailure FailureFunc

	// Sleep replaces the backoff wait in tests
	Sleep func(ctx context.Context, d time.Duration) error
}

// Dispatch is a successful selection: a live stream bound to one provider.
type Dispatch struct {
	Provider string
	Index    int
	Attempts int
	Stream   types.ChatStream
}

// Router selects a provider for each request and fails over in order.
// At most one provider call is in flight per request.
type Router struct {
	providers []types.Provider
	state     *State
	strategy  string
	retry     RetryPolicy
	logger    *slog.Logger
	onFailure FailureFunc
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewRouter creates a Router over an ordered provider list.
func NewRouter(providers []types.Provider, state *State, opts Options) *Router {
	r := &Router{
		providers: providers,
		state:     state,
		strategy:  opts.Strategy,
		retry:     opts.Retry,
		logger:    opts.Logger,
		onFailure: opts.OnFailure,
		sleep:     opts.Sleep,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.sleep == nil {
		r.sleep = sleep
	}
	return r
}

// Providers returns the ordered provider list.
func (r *Router) Providers() []types.Provider {
	return r.providers
}

// State returns the shared routing state.
func (r *Router) State() *State {
	return r.state
}

// Dispatch tries providers starting at the sticky entry or the cursor until one
// returns a stream. On success the cursor moves past the serving provider.
// When every provider fails the error is a *types.AllProvidersFailedError.
// A cancelled ctx stops the cycle with the context error.
func (r *Router) Dispatch(ctx context.Context, identity string, req *types.ChatRequest) (*Dispatch, error) {
	n := len(r.providers)
	if n == 0 {
		return nil, ErrNoProviders
	}

	sticky := r.strategy == config.StrategySticky
	key := Fingerprint(identity, req)

	start := r.state.Cursor() % n
	if sticky {
		if idx, ok := r.state.sticky.Get(key); ok && idx < n {
			start = idx
		}
	}

	var failures []types.ProviderFailure
	attempts := 0
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		p := r.providers[idx]

		stream, tries, err := r.attempt(ctx, p, req)
		attempts += tries
		if err == nil {
			if sticky {
				r.state.sticky.Set(key, idx)
			}
			r.state.advance(idx, n)
			return &Dispatch{Provider: p.Name(), Index: idx, Attempts: attempts, Stream: stream}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("dispatch cancelled: %w", ctxErr)
		}

		failures = append(failures, types.ProviderFailure{Provider: p.Name(), Err: err})
		r.logger.Warn("provider failed, trying next",
			"provider", p.Name(),
			"error", err.Error(),
			"attempts", tries,
		)
		if r.onFailure != nil {
			r.onFailure(p.Name(), types.KindOf(err))
		}
	}

	return nil, &types.AllProvidersFailedError{Failures: failures}
}

// attempt calls one provider, retrying rate-limit failures when the policy covers it.
func (r *Router) attempt(ctx context.Context, p types.Provider, req *types.ChatRequest) (types.ChatStream, int, error) {
	retries := 0
	if r.retry.appliesTo(p.Name()) {
		retries = r.retry.Retries
	}

	for i := 0; ; i++ {
		stream, err := p.Chat(ctx, req)
		if err == nil && stream == nil {
			err = errNoStream
		}
		if err == nil {
			return stream, i + 1, nil
		}
		if i >= retries || !types.IsRateLimited(err) {
			return nil, i + 1, err
		}

		delay := r.retry.Delay(i + 1)
		r.logger.Debug("provider rate limited, backing off",
			"provider", p.Name(),
			"retry", i+1,
			"delay_ms", delay.Milliseconds(),
		)
		if serr := r.sleep(ctx, delay); serr != nil {
			return nil, i + 1, serr
		}
	}
}
