package llm

import (
	"context"
	"errors"
)

// Roles used in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Request describes a single model invocation.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Client abstracts the model-invocation service so providers can be swapped or mocked.
// Implementations apply their own transport policy; any returned error counts as one
// failed attempt for the caller.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Options configures a concrete provider client.
type Options struct {
	Provider      string
	Model         string
	APIKey        string
	BaseURL       string
	OllamaBaseURL string
	TimeoutSecs   int
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }
