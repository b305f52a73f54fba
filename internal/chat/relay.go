package chat

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/VanDung-dev/DSB-bot/internal/ai"
)

// Keep the last N turns per channel so replies stay coherent without the
// prompt growing unbounded.
const historyLimit = 20

const defaultSystemPrompt = "You are a helpful Discord bot. Keep replies short, friendly and suitable for a chat channel."

// Relay turns channel messages into AI replies, carrying a rolling
// per-channel conversation history.
type Relay struct {
	provider     ai.Provider
	systemPrompt string

	mu      sync.Mutex
	history map[string][]ai.Message
}

// NewRelay builds a relay using the system prompt at promptPath; a missing
// file falls back to a built-in prompt.
func NewRelay(provider ai.Provider, promptPath string) *Relay {
	prompt := defaultSystemPrompt
	if promptPath != "" {
		if data, err := os.ReadFile(promptPath); err == nil && len(strings.TrimSpace(string(data))) > 0 {
			prompt = strings.TrimSpace(string(data))
		} else if err != nil {
			log.Printf("[Chat] system prompt %s not readable, using default: %v", promptPath, err)
		}
	}
	return &Relay{
		provider:     provider,
		systemPrompt: prompt,
		history:      make(map[string][]ai.Message),
	}
}

// Reply generates a response to content and records the exchange in the
// channel's history.
func (r *Relay) Reply(ctx context.Context, channelID, username, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty message")
	}

	userMsg := ai.Message{Role: ai.RoleUser, Content: fmt.Sprintf("%s: %s", username, content)}

	r.mu.Lock()
	messages := make([]ai.Message, 0, len(r.history[channelID])+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: r.systemPrompt})
	messages = append(messages, r.history[channelID]...)
	messages = append(messages, userMsg)
	r.mu.Unlock()

	reply, err := r.provider.Generate(ctx, messages)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	h := append(r.history[channelID], userMsg, ai.Message{Role: ai.RoleAssistant, Content: reply})
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	r.history[channelID] = h
	r.mu.Unlock()

	return reply, nil
}

// Reset drops a channel's conversation history.
func (r *Relay) Reset(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.history, channelID)
}
