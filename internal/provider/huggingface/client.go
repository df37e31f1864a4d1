// Package huggingface implements the Hugging Face inference router provider.
package huggingface

import (
	"bytes"
	"context"
	"net/http"

	"github.com/tidwall/sjson"

	"github.com/mandalnilabja/chatrelay/internal/provider/sse"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

const (
	// Name is the provider identifier.
	Name = "huggingface"

	// DefaultBaseURL is the OpenAI-compatible router endpoint.
	DefaultBaseURL = "https://router.huggingface.co/v1/chat/completions"

	// DefaultModel is used when no model is configured.
	DefaultModel = "meta-llama/Llama-3.1-8B-Instruct:novita"

	credentialEnv = "HF_TOKEN"
)

// Options configures the provider.
type Options struct {
	Token   string
	Model   string
	BaseURL string
	Client  *http.Client
}

// Provider implements types.Provider for the Hugging Face router.
type Provider struct {
	token   string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a new Hugging Face provider instance.
func New(opts Options) *Provider {
	p := &Provider{token: opts.Token, model: opts.Model, baseURL: opts.BaseURL, client: opts.Client}
	if p.model == "" {
		p.model = DefaultModel
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	return p
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return Name
}

// Chat sends the conversation upstream and returns the delta stream.
func (p *Provider) Chat(ctx context.Context, req *types.ChatRequest) (types.ChatStream, error) {
	if p.token == "" {
		return nil, types.ErrMissingCredential(Name, credentialEnv)
	}

	body, err := sjson.SetBytes([]byte(`{"stream":true}`), "messages", req.Messages)
	if err == nil {
		body, err = sjson.SetBytes(body, "model", p.model)
	}
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindConfig, Err: err}
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindConfig, Err: err}
	}
	upstreamReq.Header.Set("Content-Type", "application/json")
	upstreamReq.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(upstreamReq)
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindTransport, Err: err}
	}

	return sse.FromResponse(Name, resp, nil)
}
