package sse

import (
	"io"
	"sync/atomic"
)

// SliceStream yields a fixed set of deltas.
// Single-shot upstreams return one of these holding the full text.
type SliceStream struct {
	deltas []string
	closed atomic.Bool
}

// NewSliceStream returns a stream over the non-empty deltas.
func NewSliceStream(deltas ...string) *SliceStream {
	s := &SliceStream{}
	for _, d := range deltas {
		if d != "" {
			s.deltas = append(s.deltas, d)
		}
	}
	return s
}

// Recv returns the next delta or io.EOF.
func (s *SliceStream) Recv() (string, error) {
	if s.closed.Load() {
		return "", ErrStreamClosed
	}
	if len(s.deltas) == 0 {
		return "", io.EOF
	}
	d := s.deltas[0]
	s.deltas = s.deltas[1:]
	return d, nil
}

// Close marks the stream closed.
func (s *SliceStream) Close() error {
	s.closed.Store(true)
	return nil
}
