package openaicompat

import "net/http"

// Upstream defaults for the OpenAI-compatible providers.
const (
	GroqName             = "groq"
	GroqBaseURL          = "https://api.groq.com/openai/v1"
	GroqDefaultModel     = "llama-3.1-8b-instant"
	CerebrasName         = "cerebras"
	CerebrasBaseURL      = "https://api.cerebras.ai/v1"
	CerebrasDefaultModel = "llama3.1-8b"
)

// NewGroq creates the Groq provider.
func NewGroq(apiKey, model string, client *http.Client) *Provider {
	if model == "" {
		model = GroqDefaultModel
	}
	return New(Options{
		Name:          GroqName,
		CredentialEnv: "GROQ_API_KEY",
		APIKey:        apiKey,
		Model:         model,
		BaseURL:       GroqBaseURL,
		Client:        client,
	})
}

// NewCerebras creates the Cerebras provider.
func NewCerebras(apiKey, model string, client *http.Client) *Provider {
	if model == "" {
		model = CerebrasDefaultModel
	}
	return New(Options{
		Name:          CerebrasName,
		CredentialEnv: "CEREBRAS_API_KEY",
		APIKey:        apiKey,
		Model:         model,
		BaseURL:       CerebrasBaseURL,
		Client:        client,
	})
}
