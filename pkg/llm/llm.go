// Package llm provides a provider-agnostic completion capability: a single
// prompt in, the raw model reply out. The concrete wire protocols (Gemini,
// OpenAI-compatible chat, Ollama) are confined to this package; callers see
// only Complete plus typed errors for the failure classes they branch on.
package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Completer sends one prompt to a completion provider using the given
// credential and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, prompt, credential string) (string, error)
	Provider() string
}

// Config selects and parameterizes a provider.
type Config struct {
	Provider string // gemini, groq, mistral, ollama, openai
	Model    string
	BaseURL  string // local / openai-compatible providers only
	Timeout  time.Duration
}

// cloudProviders require an API credential; local providers accept an empty
// one.
var cloudProviders = map[string]bool{
	"gemini":  true,
	"groq":    true,
	"mistral": true,
}

// IsCloudProvider reports whether the named provider needs credentials.
func IsCloudProvider(provider string) bool {
	return cloudProviders[provider]
}

// New builds a Completer for the configured provider.
func New(cfg Config) (Completer, error) {
	hc := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	if cfg.Timeout <= 0 {
		hc.Timeout = 120 * time.Second
	}

	switch cfg.Provider {
	case "gemini":
		return &geminiClient{model: cfg.Model, http: hc}, nil
	case "groq":
		return &chatClient{provider: "groq", baseURL: groqBaseURL, model: cfg.Model, http: hc}, nil
	case "mistral":
		return &chatClient{provider: "mistral", baseURL: mistralBaseURL, model: cfg.Model, http: hc}, nil
	case "ollama":
		return &ollamaClient{baseURL: cfg.BaseURL, model: cfg.Model, http: hc}, nil
	case "openai":
		return &chatClient{provider: "openai", baseURL: cfg.BaseURL + "/v1", model: cfg.Model, http: hc}, nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
