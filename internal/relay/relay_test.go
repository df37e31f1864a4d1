package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandalnilabja/chatrelay/internal/provider/sse"
)

// chanStream yields deltas sent on ch and unblocks when closed.
type chanStream struct {
	ch     chan string
	closed chan struct{}
	once   sync.Once
	recvs  atomic.Int32
	closes atomic.Int32
}

func newChanStream() *chanStream {
	return &chanStream{ch: make(chan string), closed: make(chan struct{})}
}

func (s *chanStream) Recv() (string, error) {
	s.recvs.Add(1)
	select {
	case d, ok := <-s.ch:
		if !ok {
			return "", io.EOF
		}
		return d, nil
	case <-s.closed:
		return "", errors.New("use of closed network connection")
	}
}

func (s *chanStream) Close() error {
	s.closes.Add(1)
	s.once.Do(func() { close(s.closed) })
	return nil
}

// failingStream yields its deltas and then fails.
type failingStream struct {
	deltas []string
	err    error
}

func (s *failingStream) Recv() (string, error) {
	if len(s.deltas) == 0 {
		return "", s.err
	}
	d := s.deltas[0]
	s.deltas = s.deltas[1:]
	return d, nil
}

func (s *failingStream) Close() error { return nil }

// signalWriter reports every write on wrote.
type signalWriter struct {
	*httptest.ResponseRecorder
	wrote chan struct{}
}

func (w *signalWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseRecorder.Write(p)
	select {
	case w.wrote <- struct{}{}:
	default:
	}
	return n, err
}

// brokenWriter fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestFrame(t *testing.T) {
	tests := []struct {
		delta string
		want  string
	}{
		{"He", "data: He\n\n"},
		{"a\nb", "data: a\ndata: b\n\n"},
		{"trailing\n", "data: trailing\ndata: \n\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(Frame(tt.delta)))
	}
}

func TestRun_Completed(t *testing.T) {
	rec := httptest.NewRecorder()
	r := New(rec, sse.NewSliceStream("He", "llo"), "groq", Options{CaptureText: true})

	out := r.Run(context.Background())

	assert.Equal(t, StateCompleted, out.State)
	assert.Equal(t, "groq", out.Provider)
	assert.Equal(t, 2, out.Deltas)
	assert.Equal(t, "Hello", out.Text)
	assert.NoError(t, out.Err)
	assert.Equal(t, "data: He\n\ndata: llo\n\n", rec.Body.String())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	assert.True(t, rec.Flushed)
}

func TestRun_EmbeddedNewline(t *testing.T) {
	rec := httptest.NewRecorder()
	out := New(rec, sse.NewSliceStream("a\nb"), "p", Options{}).Run(context.Background())

	assert.Equal(t, StateCompleted, out.State)
	assert.Equal(t, "data: a\ndata: b\n\n", rec.Body.String())
	assert.Empty(t, out.Text)
}

func TestRun_MidStreamError(t *testing.T) {
	rec := httptest.NewRecorder()
	stream := &failingStream{deltas: []string{"partial"}, err: errors.New("upstream reset")}

	out := New(rec, stream, "gemini", Options{}).Run(context.Background())

	assert.Equal(t, StateErrored, out.State)
	assert.EqualError(t, out.Err, "upstream reset")
	assert.Equal(t, 1, out.Deltas)
	assert.Equal(t, "data: partial\n\n", rec.Body.String())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRun_AbortBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	stream := newChanStream()
	out := New(rec, stream, "p", Options{}).Run(ctx)

	assert.Equal(t, StateAborted, out.State)
	assert.Zero(t, rec.Body.Len())
	assert.Empty(t, rec.Header().Get("Content-Type"))
	assert.Equal(t, int32(0), stream.recvs.Load())
	assert.GreaterOrEqual(t, stream.closes.Load(), int32(1))
}

func TestRun_AbortMidStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &signalWriter{ResponseRecorder: httptest.NewRecorder(), wrote: make(chan struct{}, 4)}
	stream := newChanStream()
	r := New(w, stream, "p", Options{})

	done := make(chan Outcome, 1)
	go func() { done <- r.Run(ctx) }()

	stream.ch <- "first"
	select {
	case <-w.wrote:
	case <-time.After(2 * time.Second):
		t.Fatal("first delta was not written")
	}

	cancel()

	var out Outcome
	select {
	case out = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after abort")
	}

	assert.Equal(t, StateAborted, out.State)
	assert.NoError(t, out.Err)
	assert.Equal(t, 1, out.Deltas)
	assert.Equal(t, int32(2), stream.recvs.Load())
	assert.Equal(t, "data: first\n\n", w.Body.String())

	// Terminal state absorbs further transitions.
	assert.False(t, r.finish(StateCompleted))
	assert.False(t, r.finish(StateErrored))
	assert.Equal(t, StateAborted, r.State())
}

// cancelStream cancels the request on its second Recv but still returns a
// delta, then blocks until closed.
type cancelStream struct {
	cancel context.CancelFunc
	recvs  int
	closed chan struct{}
	once   sync.Once
}

func (s *cancelStream) Recv() (string, error) {
	s.recvs++
	switch s.recvs {
	case 1:
		return "first", nil
	case 2:
		s.cancel()
		return "late", nil
	}
	<-s.closed
	return "", errors.New("use of closed network connection")
}

func (s *cancelStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// stateWriter counts writes made after the relay reached a terminal state.
type stateWriter struct {
	*httptest.ResponseRecorder
	relay         *Relay
	afterTerminal int
}

func (w *stateWriter) Write(p []byte) (int, error) {
	if w.relay.State().Terminal() {
		w.afterTerminal++
	}
	return w.ResponseRecorder.Write(p)
}

func TestRun_NoWriteAfterAbort(t *testing.T) {
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		w := &stateWriter{ResponseRecorder: httptest.NewRecorder()}
		stream := &cancelStream{cancel: cancel, closed: make(chan struct{})}
		w.relay = New(w, stream, "p", Options{})

		out := w.relay.Run(ctx)
		cancel()

		require.Equal(t, StateAborted, out.State)
		require.Zero(t, w.afterTerminal, "iteration %d", i)
	}
}

func TestRun_WriteFailureAborts(t *testing.T) {
	w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
	stream := &failingStream{deltas: []string{"a", "b"}, err: io.EOF}

	out := New(w, stream, "p", Options{}).Run(context.Background())

	assert.Equal(t, StateAborted, out.State)
	assert.Equal(t, 0, out.Deltas)
	require.Len(t, stream.deltas, 1)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.True(t, StateErrored.Terminal())
	assert.False(t, StateStreaming.Terminal())
}
