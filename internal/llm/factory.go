package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// NewClient builds the configured provider and wraps it in a Router so that
// "ollama/" model ids always reach the local endpoint.
func NewClient(ctx context.Context, opts Options) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openrouter"
	}
	timeout := time.Duration(opts.TimeoutSecs) * time.Second

	// Without a key the primary route stays empty; "ollama/" models still work.
	hasKey := strings.TrimSpace(opts.APIKey) != ""

	var primary Client
	var err error
	switch provider {
	case "openrouter", "openai", "deepseek":
		if provider == "deepseek" && opts.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		baseURL := opts.BaseURL
		if provider == "openai" && baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		if hasKey {
			primary, err = NewOpenAIClient(opts.APIKey, opts.Model, baseURL, timeout)
		}
	case "gemini":
		if hasKey {
			primary, err = NewGeminiClient(ctx, opts.APIKey, opts.Model)
		}
	case "ollama":
	case "mock":
		return MockClient{}, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	ollamaURL := opts.OllamaBaseURL
	if ollamaURL == "" {
		ollamaURL = defaultOllamaBaseURL
	}
	// Local models answer slowly; give them a much wider window.
	local, err := NewOpenAIClient("ollama", "", ollamaURL, 10*time.Minute)
	if err != nil {
		return nil, err
	}
	if provider == "ollama" {
		return &ollamaOnly{router: NewRouter(nil, local)}, nil
	}
	return NewRouter(primary, local), nil
}

// ollamaOnly forces every request through the local route.
type ollamaOnly struct {
	router *Router
}

func (o *ollamaOnly) Generate(ctx context.Context, req Request) (string, error) {
	if !strings.HasPrefix(req.Model, OllamaPrefix) {
		req.Model = OllamaPrefix + req.Model
	}
	return o.router.Generate(ctx, req)
}
