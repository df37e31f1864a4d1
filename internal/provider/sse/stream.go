// Package sse decodes upstream server-sent event bodies into types.ChatStream values.
package sse

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
)

// DefaultDeltaPath locates the incremental text in an OpenAI-style chunk.
const DefaultDeltaPath = "choices.0.delta.content"

// doneSentinel terminates an event stream.
const doneSentinel = "[DONE]"

// ErrStreamClosed is returned by Recv after Close.
var ErrStreamClosed = errors.New("stream closed")

var (
	frameSep   = []byte("\n\n")
	crlf       = []byte("\r\n")
	lf         = []byte("\n")
	dataPrefix = []byte("data:")
)

// EventStream reads SSE frames from an upstream body and yields text deltas.
// Frames split across reads are buffered until their separator arrives.
// Payloads that are not valid JSON are skipped.
type EventStream struct {
	body    io.ReadCloser
	path    string
	readBuf []byte

	buf     []byte
	pending []string
	done    bool

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewEventStream wraps body. path is the gjson path of the delta text;
// an empty path uses DefaultDeltaPath.
func NewEventStream(body io.ReadCloser, path string) *EventStream {
	if path == "" {
		path = DefaultDeltaPath
	}
	return &EventStream{
		body:    body,
		path:    path,
		readBuf: make([]byte, 32*1024),
	}
}

// Recv returns the next non-empty delta or io.EOF.
func (s *EventStream) Recv() (string, error) {
	for {
		if len(s.pending) > 0 {
			delta := s.pending[0]
			s.pending = s.pending[1:]
			return delta, nil
		}
		if s.done {
			return "", io.EOF
		}
		if s.closed.Load() {
			return "", ErrStreamClosed
		}

		n, err := s.body.Read(s.readBuf)
		if n > 0 {
			s.buf = append(s.buf, s.readBuf[:n]...)
			s.drain()
		}
		if err == io.EOF {
			// A trailing partial frame is never completed; drop it.
			s.done = true
			s.buf = nil
			continue
		}
		if err != nil {
			if s.closed.Load() {
				return "", ErrStreamClosed
			}
			return "", err
		}
	}
}

// Close releases the upstream body. Safe to call more than once.
func (s *EventStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.body.Close()
	})
	return err
}

// drain consumes every complete frame in the buffer.
func (s *EventStream) drain() {
	if bytes.Contains(s.buf, crlf) {
		s.buf = bytes.ReplaceAll(s.buf, crlf, lf)
	}
	for !s.done {
		idx := bytes.Index(s.buf, frameSep)
		if idx < 0 {
			return
		}
		frame := s.buf[:idx]
		s.buf = s.buf[idx+len(frameSep):]
		s.handleFrame(frame)
	}
}

func (s *EventStream) handleFrame(frame []byte) {
	for _, raw := range bytes.Split(frame, lf) {
		line := bytes.TrimSpace(raw)
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}

		data := bytes.TrimSpace(line[len(dataPrefix):])
		if len(data) == 0 {
			continue
		}
		if string(data) == doneSentinel {
			s.done = true
			s.buf = nil
			return
		}
		if !gjson.ValidBytes(data) {
			continue
		}
		if delta := gjson.GetBytes(data, s.path).String(); delta != "" {
			s.pending = append(s.pending, delta)
		}
	}
}
