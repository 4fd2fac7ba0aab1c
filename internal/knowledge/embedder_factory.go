package knowledge

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultOllamaEmbedURL     = "http://localhost:11434/v1"
	defaultOpenRouterEmbedURL = "https://openrouter.ai/api/v1"
)

type EmbedderOptions struct {
	Provider  string
	APIKey    string
	Model     string
	Dimension int
	BaseURL   string
}

func NewEmbedder(ctx context.Context, opts EmbedderOptions) (Embedder, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGeminiEmbedder(ctx, opts.APIKey, opts.Model, opts.Dimension)
	case "openai":
		return NewOpenAIEmbedder(opts.APIKey, opts.Model, opts.Dimension, opts.BaseURL)
	case "openrouter":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = defaultOpenRouterEmbedURL
		}
		return NewOpenAIEmbedder(opts.APIKey, opts.Model, opts.Dimension, baseURL)
	case "ollama":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaEmbedURL
		}
		return NewOpenAIEmbedder("ollama", opts.Model, opts.Dimension, baseURL)
	case "hash", "mock":
		return NewHashEmbedder(opts.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", opts.Provider)
	}
}
