package openaicompat

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/mandalnilabja/chatrelay/internal/provider/sse"
)

// chunkStream adapts the SDK's chunk iterator to types.ChatStream.
type chunkStream struct {
	strm      *ssestream.Stream[openai.ChatCompletionChunk]
	closed    atomic.Bool
	closeOnce sync.Once
}

func newChunkStream(strm *ssestream.Stream[openai.ChatCompletionChunk]) *chunkStream {
	return &chunkStream{strm: strm}
}

// Recv returns the next non-empty content delta.
func (s *chunkStream) Recv() (string, error) {
	if s.closed.Load() {
		return "", sse.ErrStreamClosed
	}
	for s.strm.Next() {
		chunk := s.strm.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
	if err := s.strm.Err(); err != nil {
		if s.closed.Load() {
			return "", sse.ErrStreamClosed
		}
		return "", err
	}
	return "", io.EOF
}

// Close releases the HTTP response. Safe to call more than once.
func (s *chunkStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.strm.Close()
	})
	return err
}
