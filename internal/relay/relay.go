// Package relay streams a provider's deltas to the client as server-sent events.
package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Outcome summarizes a finished relay.
type Outcome struct {
	State    State
	Provider string
	Deltas   int
	Bytes    int
	Text     string
	Err      error
	Duration time.Duration
}

// Options configures a Relay.
type Options struct {
	// Start is when the request began; durations are measured from it
	Start time.Time

	// CaptureText keeps the concatenated deltas in Outcome.Text
	CaptureText bool
}

// Relay drives one stream to a terminal state exactly once.
// Transitions out of a terminal state are no-ops.
type Relay struct {
	w        http.ResponseWriter
	rc       *http.ResponseController
	stream   types.ChatStream
	provider string
	opts     Options

	state atomic.Int32

	// wmu orders record writes against the abort transition
	wmu sync.Mutex
}

// New creates a relay for a dispatched stream.
func New(w http.ResponseWriter, stream types.ChatStream, provider string, opts Options) *Relay {
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	return &Relay{
		w:        w,
		rc:       http.NewResponseController(w),
		stream:   stream,
		provider: provider,
		opts:     opts,
	}
}

// State returns the current state.
func (r *Relay) State() State {
	return State(r.state.Load())
}

// transition moves from one specific state to another.
func (r *Relay) transition(from, to State) bool {
	return r.state.CompareAndSwap(int32(from), int32(to))
}

// finish moves any non-terminal state to a terminal one.
// Only the first caller wins.
func (r *Relay) finish(to State) bool {
	for {
		cur := State(r.state.Load())
		if cur.Terminal() {
			return false
		}
		if r.state.CompareAndSwap(int32(cur), int32(to)) {
			return true
		}
	}
}

// WriteHeaders commits the SSE success response.
func WriteHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}

// Run pulls deltas and writes them as SSE records until the stream ends,
// the client goes away (ctx done or a failed write) or the stream fails.
// The next delta is pulled only after the previous record was flushed.
// The stream is always closed on return.
func (r *Relay) Run(ctx context.Context) Outcome {
	defer r.stream.Close()

	out := Outcome{Provider: r.provider}
	var text strings.Builder

	if ctx.Err() != nil {
		r.finish(StateAborted)
		return r.outcome(out, &text)
	}

	if !r.transition(StateInit, StateStreaming) {
		return r.outcome(out, &text)
	}
	WriteHeaders(r.w)
	r.rc.Flush()

	// Unblocks a pending Recv when the client disconnects.
	stop := context.AfterFunc(ctx, func() {
		r.wmu.Lock()
		r.finish(StateAborted)
		r.wmu.Unlock()
		r.stream.Close()
	})
	defer stop()

	for {
		delta, err := r.stream.Recv()
		if r.State().Terminal() {
			break
		}
		if errors.Is(err, io.EOF) {
			r.finish(StateCompleted)
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				r.finish(StateAborted)
			} else if r.finish(StateErrored) {
				out.Err = err
			}
			break
		}

		n, written, werr := r.write(delta)
		out.Bytes += n
		if !written {
			break
		}
		if werr != nil {
			r.finish(StateAborted)
			break
		}

		out.Deltas++
		if r.opts.CaptureText {
			text.WriteString(delta)
		}
	}

	return r.outcome(out, &text)
}

// write sends one record unless the relay already reached a terminal state.
func (r *Relay) write(delta string) (n int, written bool, err error) {
	r.wmu.Lock()
	defer r.wmu.Unlock()
	if r.State().Terminal() {
		return 0, false, nil
	}
	n, err = r.w.Write(Frame(delta))
	if err == nil {
		r.rc.Flush()
	}
	return n, true, err
}

func (r *Relay) outcome(out Outcome, text *strings.Builder) Outcome {
	out.State = r.State()
	out.Text = text.String()
	out.Duration = time.Since(r.opts.Start)
	return out
}
