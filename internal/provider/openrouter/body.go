package openrouter

import (
	"github.com/tidwall/sjson"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// buildBody renders the chat completions payload with streaming enabled.
func buildBody(model string, req *types.ChatRequest) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "model", model)
	if err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "messages", req.Messages); err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "stream", true)
}
