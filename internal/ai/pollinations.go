package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VanDung-dev/DSB-bot/pkg/retrylimit"
)

// PollinationsProvider is the keyless fallback backend.
type PollinationsProvider struct {
	model   string
	client  *http.Client
	limiter *retrylimit.AdaptiveLimiter
}

func NewPollinationsProvider(model string) *PollinationsProvider {
	if model == "" {
		model = "openai"
	}
	return &PollinationsProvider{
		model:   model,
		client:  &http.Client{Timeout: 25 * time.Second},
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
	}
}

func (p *PollinationsProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":       p.model,
		"messages":    messages,
		"temperature": 1,
		"private":     true,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var reply string
	err = retrylimit.WithRetryMax(ctx, func() error {
		req, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			"https://text.pollinations.ai/openai",
			bytes.NewReader(data),
		)
		if err != nil {
			return &retrylimit.FatalError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &statusError{code: resp.StatusCode, body: truncate(body)}
		}

		if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return fmt.Errorf("pollinations returned html")
		}

		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return &retrylimit.FatalError{Err: err}
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("pollinations empty choices")
		}

		reply = cleanReply(parsed.Choices[0].Message.Content)
		if isGarbageResponse(reply) {
			return fmt.Errorf("pollinations returned garbage")
		}
		return nil
	}, p.limiter, 3)
	if err != nil {
		return "", err
	}

	return reply, nil
}
