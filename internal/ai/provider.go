package ai

import (
	"context"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a single chat completion for an ordered message list.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// NewProvider selects a backend by engine name. An empty engine means
// gemini.
func NewProvider(engine, model, apiKey string) (Provider, error) {
	switch engine {
	case "gemini", "":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return NewGeminiProvider(model, apiKey), nil
	case "pollinations":
		return NewPollinationsProvider(model), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", engine)
	}
}
