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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiProvider talks to the Google generative language REST API.
type GeminiProvider struct {
	model   string
	apiKey  string
	client  *http.Client
	limiter *retrylimit.AdaptiveLimiter
}

func NewGeminiProvider(model, apiKey string) *GeminiProvider {
	if model == "" {
		model = "gemma-3-27b-it"
	}
	return &GeminiProvider{
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// statusError carries the HTTP status so the retry layer can tell rate
// limits and server errors apart.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string   { return fmt.Sprintf("status=%d body=%s", e.code, e.body) }
func (e *statusError) StatusCode() int { return e.code }

func (p *GeminiProvider) Generate(ctx context.Context, messages []Message) (string, error) {
	reqBody := buildGeminiRequest(messages)
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, p.model)

	var reply string
	err = retrylimit.WithRetryMax(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return &retrylimit.FatalError{Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", p.apiKey)

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := &statusError{code: resp.StatusCode, body: truncate(body)}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return &retrylimit.FatalError{Err: serr}
			}
			return serr
		}

		var parsed geminiResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return &retrylimit.FatalError{Err: fmt.Errorf("unmarshal: %w body=%s", err, truncate(body))}
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("gemini returned no candidates")
		}

		var sb strings.Builder
		for _, part := range parsed.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		reply = cleanReply(sb.String())
		if isGarbageResponse(reply) {
			return fmt.Errorf("gemini returned garbage")
		}
		return nil
	}, p.limiter, 3)
	if err != nil {
		return "", err
	}

	return reply, nil
}

// buildGeminiRequest maps chat roles onto the Gemini content schema: system
// messages become the system instruction, assistant turns become "model".
func buildGeminiRequest(messages []Message) geminiRequest {
	var req geminiRequest
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			if req.SystemInstruction == nil {
				req.SystemInstruction = &geminiContent{}
			}
			req.SystemInstruction.Parts = append(req.SystemInstruction.Parts, geminiPart{Text: m.Content})
		case RoleAssistant:
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	return req
}
