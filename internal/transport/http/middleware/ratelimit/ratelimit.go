// Package ratelimit provides fixed-window rate limiting per caller.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/alphadose/haxmap"

	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/auth"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// AnonymousID identifies callers with neither an API key nor X-Forwarded-For.
const AnonymousID = "anonymous"

// window is one caller's current fixed window. removed is set under mu when
// Cleanup drops the window from the map.
type window struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
	removed bool
}

// Result is the outcome of one Check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter allows max requests per identifier in each window.
type Limiter struct {
	max     int
	window  time.Duration
	windows *haxmap.Map[string, *window]
	now     func() time.Time
}

// New creates a limiter allowing max requests per window.
func New(max int, win time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  win,
		windows: haxmap.New[string, *window](),
		now:     time.Now,
	}
}

// Check counts one request for id.
func (l *Limiter) Check(id string) Result {
	now := l.now()
	w := l.acquire(id, now)
	defer w.mu.Unlock()

	if !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(l.window)
	}

	if w.count >= l.max {
		return Result{Allowed: false, Limit: l.max, Remaining: 0, ResetAt: w.resetAt}
	}

	w.count++
	return Result{Allowed: true, Limit: l.max, Remaining: l.max - w.count, ResetAt: w.resetAt}
}

// acquire returns the locked live window for id, creating one if needed.
func (l *Limiter) acquire(id string, now time.Time) *window {
	for {
		w, _ := l.windows.GetOrCompute(id, func() *window {
			return &window{resetAt: now.Add(l.window)}
		})
		w.mu.Lock()
		if !w.removed {
			return w
		}
		// Cleanup already deleted it from the map; the next lookup creates a fresh one.
		w.mu.Unlock()
	}
}

// Stats returns the current count and reset time for id.
func (l *Limiter) Stats(id string) (count int, resetAt time.Time, ok bool) {
	w, found := l.windows.Get(id)
	if !found {
		return 0, time.Time{}, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !l.now().Before(w.resetAt) {
		return 0, time.Time{}, false
	}
	return w.count, w.resetAt, true
}

// Cleanup drops expired windows and returns how many were removed.
func (l *Limiter) Cleanup() int {
	now := l.now()
	candidates := make(map[string]*window)
	l.windows.ForEach(func(id string, w *window) bool {
		w.mu.Lock()
		if !now.Before(w.resetAt) {
			candidates[id] = w
		}
		w.mu.Unlock()
		return true
	})

	removed := 0
	for id, w := range candidates {
		w.mu.Lock()
		// A concurrent Check may have reset the window since the scan.
		if !w.removed && !now.Before(w.resetAt) {
			w.removed = true
			l.windows.Del(id)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked windows.
func (l *Limiter) Len() int {
	return int(l.windows.Len())
}

// Identifier picks the rate-limit identity: the API key, else the
// X-Forwarded-For header, else AnonymousID.
func Identifier(r *http.Request) string {
	if key := auth.KeyFromContext(r.Context()); key != "" {
		return key
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return AnonymousID
}

// Middleware enforces the limiter. Must run after auth.Gate so the key is
// on the context. onLimited is optional.
func Middleware(limiter *Limiter, onLimited func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Check(Identifier(r))
			if !res.Allowed {
				if onLimited != nil {
					onLimited()
				}
				writeTooManyRequests(w, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeTooManyRequests writes a JSON 429 response.
func writeTooManyRequests(w http.ResponseWriter, res Result) {
	resetAt := res.ResetAt.UTC().Format("2006-01-02T15:04:05.000Z")

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset", resetAt)

	types.WriteError(w, http.StatusTooManyRequests, types.ErrRateLimit("Rate limit exceeded", resetAt))
}
