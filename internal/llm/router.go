package llm

import (
	"context"
	"fmt"
	"strings"
)

// OllamaPrefix marks model ids that are served by a local Ollama instance.
const OllamaPrefix = "ollama/"

// Router sends "ollama/<model>" requests to a local client with the prefix
// stripped, and everything else to the primary provider.
type Router struct {
	primary Client
	local   Client
}

func NewRouter(primary, local Client) *Router {
	return &Router{primary: primary, local: local}
}

func (r *Router) Generate(ctx context.Context, req Request) (string, error) {
	if strings.HasPrefix(req.Model, OllamaPrefix) {
		if r.local == nil {
			return "", fmt.Errorf("no local client configured for model %s", req.Model)
		}
		req.Model = strings.TrimPrefix(req.Model, OllamaPrefix)
		return r.local.Generate(ctx, req)
	}
	if r.primary == nil {
		return "", fmt.Errorf("no provider configured for model %s", req.Model)
	}
	return r.primary.Generate(ctx, req)
}
