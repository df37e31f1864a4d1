// Package gemini implements the Google Gemini provider.
// Gemini is called with generateContent, so the reply arrives as one delta.
package gemini

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mandalnilabja/chatrelay/internal/provider/sse"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

const (
	// Name is the provider identifier.
	Name = "gemini"

	// DefaultBaseURL is the Generative Language API models root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-3-flash-preview"

	credentialEnv = "GEMINI_API_KEY"
)

// Options configures the provider.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// Provider implements types.Provider for Gemini.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a new Gemini provider instance.
func New(opts Options) *Provider {
	p := &Provider{apiKey: opts.APIKey, model: opts.Model, baseURL: opts.BaseURL, client: opts.Client}
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

// endpoint returns the generateContent URL for the configured model.
func (p *Provider) endpoint() string {
	return strings.TrimSuffix(p.baseURL, "/") + "/" + p.model + ":generateContent"
}

// Chat sends the user turns as a single prompt.
// System and assistant turns are not forwarded.
func (p *Provider) Chat(ctx context.Context, req *types.ChatRequest) (types.ChatStream, error) {
	if p.apiKey == "" {
		return nil, types.ErrMissingCredential(Name, credentialEnv)
	}

	body, err := sjson.SetBytes([]byte(`{}`), "contents.0.parts.0.text", req.UserContent())
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindConfig, Err: err}
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindConfig, Err: err}
	}
	upstreamReq.Header.Set("Content-Type", "application/json")
	upstreamReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(upstreamReq)
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindTransport, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamError{Provider: Name, Kind: types.KindTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.NewStatusError(Name, resp.StatusCode, data, nil)
	}

	return sse.NewSliceStream(extractText(data)), nil
}

// extractText concatenates every text part of the first candidate.
func extractText(data []byte) string {
	var sb strings.Builder
	for _, part := range gjson.GetBytes(data, "candidates.0.content.parts").Array() {
		sb.WriteString(part.Get("text").String())
	}
	return sb.String()
}
