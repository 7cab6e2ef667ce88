package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"studybuddy/internal/pkg/httpx"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var ErrEmptyChoices = errors.New("llm returned no choices")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAICompatibleClient talks to any /chat/completions and /embeddings
// endpoint that follows the OpenAI wire format (Groq, OpenAI, DashScope...).
type OpenAICompatibleClient struct {
	conn  *httpx.Connector
	model string
}

func NewOpenAICompatibleClient(cfg ChatConfig) *OpenAICompatibleClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	conn := httpx.NewConnector(httpx.ConnectorConfig{
		BaseURL: cfg.BaseURL,
		Headers: map[string]string{"Authorization": "Bearer " + cfg.APIKey},
	}, httpx.WithRequestTimeout(cfg.Timeout), httpx.WithRequestLogging())
	return &OpenAICompatibleClient{conn: conn, model: cfg.Model}
}

func (c *OpenAICompatibleClient) Model() string {
	return c.model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one non-streaming completion request and returns the text of
// the first choice. Network failures come back as *httpx.TransportError and
// non-2xx answers as *httpx.UpstreamError.
func (c *OpenAICompatibleClient) Complete(ctx context.Context, messages []ChatMessage, temperature float64) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	}
	var resp chatResponse
	if err := c.conn.DoJSON(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("llm completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return resp.Choices[0].Message.Content, nil
}
