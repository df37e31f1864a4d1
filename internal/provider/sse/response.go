package sse

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// ErrNoBody is wrapped when a successful upstream response carries no body.
var ErrNoBody = errors.New("response has no body")

// messagePath locates the full text in a non-streamed chat completion.
const messagePath = "choices.0.message.content"

// FromResponse turns an upstream chat-completions response into a stream.
// Non-2xx statuses become *types.UpstreamError classified by classify.
// A JSON body (upstream ignored stream=true) becomes a single-delta stream.
// The caller must not touch resp.Body afterwards.
func FromResponse(provider string, resp *http.Response, classify types.Classifier) (types.ChatStream, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body []byte
		if resp.Body != nil {
			defer resp.Body.Close()
			body, _ = io.ReadAll(io.LimitReader(resp.Body, 4096))
		}
		return nil, types.NewStatusError(provider, resp.StatusCode, body, classify)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, &types.UpstreamError{Provider: provider, Kind: types.KindNoBody, Err: ErrNoBody}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &types.UpstreamError{Provider: provider, Kind: types.KindTransport, Err: err}
		}
		return NewSliceStream(gjson.GetBytes(body, messagePath).String()), nil
	}

	return NewEventStream(resp.Body, DefaultDeltaPath), nil
}
