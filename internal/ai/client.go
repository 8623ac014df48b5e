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

	"github.com/mewisme/private-chats/internal/domain"
	"github.com/mewisme/private-chats/internal/infrastructure/configs"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. The default
// deployment points it at Gemini's compatibility surface; any endpoint
// speaking the same dialect works.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg configs.AIConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []domain.Turn `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message domain.Turn `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the full transcript and returns the assistant's next turn.
func (c *Client) Complete(ctx context.Context, transcript []domain.Turn) (domain.Turn, error) {
	payload, err := json.Marshal(completionRequest{
		Model:    c.model,
		Messages: transcript,
	})
	if err != nil {
		return domain.Turn{}, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return domain.Turn{}, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Turn{}, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.Turn{}, fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Turn{}, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return domain.Turn{}, fmt.Errorf("completion endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return domain.Turn{}, fmt.Errorf("completion response has no choices")
	}

	turn := parsed.Choices[0].Message
	if turn.Role == "" {
		turn.Role = domain.RoleAssistant
	}

	return turn, nil
}
