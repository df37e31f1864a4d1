package provider

import (
	"context"
	"time"
)

// RetryPolicy gives one provider extra attempts on rate-limit failures.
type RetryPolicy struct {
	Provider  string
	Retries   int
	BaseDelay time.Duration
}

// appliesTo reports whether name is the retry-eligible provider.
func (p RetryPolicy) appliesTo(name string) bool {
	return p.Provider != "" && p.Retries > 0 && p.Provider == name
}

// Delay returns the wait before retry attempt (1-based): base * 2^(attempt-1).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay * time.Duration(1<<(attempt-1))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
