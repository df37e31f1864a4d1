// Package openaicompat implements providers that speak the OpenAI chat completions API
// through the official SDK. Groq and Cerebras are configured here.
package openaicompat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// Sampling settings sent with every request.
const (
	maxCompletionTokens = 2048
	temperature         = 0.2
	topP                = 1
)

// Options configures one OpenAI-compatible upstream.
type Options struct {
	Name          string
	CredentialEnv string
	APIKey        string
	Model         string
	BaseURL       string
	Client        *http.Client
}

// Provider implements types.Provider over the openai-go client.
type Provider struct {
	name          string
	credentialEnv string
	model         string
	client        *openai.Client
	configured    bool
}

// New creates a provider for an OpenAI-compatible endpoint.
func New(opts Options) *Provider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(withTrailingSlash(opts.BaseURL)),
		// Retries belong to the dispatcher.
		option.WithMaxRetries(0),
	}
	if opts.Client != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.Client))
	}

	return &Provider{
		name:          opts.Name,
		credentialEnv: opts.CredentialEnv,
		model:         opts.Model,
		client:        openai.NewClient(reqOpts...),
		configured:    opts.APIKey != "",
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.name
}

// Chat opens a streaming completion.
// HTTP failures surface before the first delta because the SDK sends the request eagerly.
func (p *Provider) Chat(ctx context.Context, req *types.ChatRequest) (types.ChatStream, error) {
	if !p.configured {
		return nil, types.ErrMissingCredential(p.name, p.credentialEnv)
	}

	strm := p.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages:            openai.F(toMessages(req.Messages)),
		Model:               openai.F(p.model),
		MaxCompletionTokens: openai.Int(maxCompletionTokens),
		Temperature:         openai.Float(temperature),
		TopP:                openai.Float(topP),
	})
	if err := strm.Err(); err != nil {
		strm.Close()
		return nil, p.wrapError(err)
	}

	return newChunkStream(strm), nil
}

// wrapError converts SDK errors into the gateway's upstream error.
func (p *Provider) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &types.UpstreamError{
			Provider:   p.name,
			Kind:       types.KindStatus,
			StatusCode: apiErr.StatusCode,
			Body:       types.Excerpt([]byte(apiErr.Error())),
		}
	}
	return &types.UpstreamError{Provider: p.name, Kind: types.KindTransport, Err: err}
}

func toMessages(messages []types.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case types.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
