package provider

import (
	"errors"
	"net/http"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/config"
	"github.com/mandalnilabja/chatrelay/internal/provider/gemini"
	"github.com/mandalnilabja/chatrelay/internal/provider/huggingface"
	"github.com/mandalnilabja/chatrelay/internal/provider/openaicompat"
	"github.com/mandalnilabja/chatrelay/internal/provider/openrouter"
	"github.com/mandalnilabja/chatrelay/internal/types"
)

// ErrNoProviders is returned when the configured provider list is empty.
var ErrNoProviders = errors.New("no providers configured")

// NewHTTPClient returns the client shared by the HTTP adapters.
// Compression is disabled so SSE frames are not buffered by the transport.
func NewHTTPClient(responseHeaderTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DisableCompression:    true,
			ResponseHeaderTimeout: responseHeaderTimeout,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// NewProviders builds the ordered provider list from config.
// Unknown names are skipped; config.Validate reports them.
func NewProviders(cfg *config.Config, client *http.Client) ([]types.Provider, error) {
	providers := make([]types.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		if p := newProvider(name, cfg.Settings(name), client); p != nil {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	return providers, nil
}

func newProvider(name string, s config.ProviderSettings, client *http.Client) types.Provider {
	switch name {
	case openaicompat.GroqName:
		return openaicompat.NewGroq(s.APIKey, s.Model, client)
	case openaicompat.CerebrasName:
		return openaicompat.NewCerebras(s.APIKey, s.Model, client)
	case openrouter.Name:
		return openrouter.New(openrouter.Options{APIKey: s.APIKey, Model: s.Model, Client: client})
	case gemini.Name:
		return gemini.New(gemini.Options{APIKey: s.APIKey, Model: s.Model, Client: client})
	case huggingface.Name:
		return huggingface.New(huggingface.Options{Token: s.APIKey, Model: s.Model, Client: client})
	}
	return nil
}

// Names returns the identifiers of providers in order.
func Names(providers []types.Provider) []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	return names
}
