// Package openrouter implements the OpenRouter LLM provider.
package openrouter

import (
	"bytes"
	"context"
	"net/http"

	"github.com/mandalnilabja/chatrelay/internal/provider/sse"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

const (
	// Name is the provider identifier.
	Name = "openrouter"

	// DefaultBaseURL is the OpenRouter chat completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultModel is used when no model is configured.
	DefaultModel = "deepseek/deepseek-r1-0528:free"

	credentialEnv = "OPENROUTER_API_KEY"
)

// Options configures the provider.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// Provider implements types.Provider for OpenRouter.
// It streams over SSE and reports 429 or "rate-limited" bodies as rate-limit failures.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a new OpenRouter provider instance.
// A missing API key is not an error here; every Chat call reports it instead.
func New(opts Options) *Provider {
	p := &Provider{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: opts.BaseURL,
		client:  opts.Client,
	}
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

// BaseURL returns the OpenRouter API endpoint
func (p *Provider) BaseURL() string {
	return p.baseURL
}

// PrepareRequest adds OpenRouter-specific headers to the request
func (p *Provider) PrepareRequest(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("HTTP-Referer", "https://github.com/mandalnilabja/chatrelay")
	req.Header.Set("X-Title", "chatrelay")
}

// Chat sends the conversation upstream and returns the delta stream.
func (p *Provider) Chat(ctx context.Context, req *types.ChatRequest) (types.ChatStream, error) {
	if p.apiKey == "" {
		return nil, types.ErrMissingCredential(Name, credentialEnv)
	}

	body, err := buildBody(p.model, req)
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindConfig, Err: err}
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindConfig, Err: err}
	}
	p.PrepareRequest(upstreamReq)

	resp, err := p.client.Do(upstreamReq)
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindTransport, Err: err}
	}

	return sse.FromResponse(Name, resp, Classify)
}

// Classify decides whether an OpenRouter failure is a rate-limit signal.
func Classify(statusCode int, body string) types.ErrorKind {
	return types.ClassifyRateLimit(statusCode, body)
}
