package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reflective-ai/reflective-server/internal/model"
)

// OpenAIClient calls any OpenAI-compatible chat completions endpoint
// (OpenAI itself, or local servers such as Ollama's /v1 surface).
type OpenAIClient struct {
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewOpenAIClient creates a chat client for an OpenAI-compatible API.
func NewOpenAIClient(baseURL, apiKey, chatModel string, temperature float64, maxTokens int) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if chatModel == "" {
		chatModel = "gpt-3.5-turbo"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &OpenAIClient{client: c, model: chatModel, temperature: temperature, maxTokens: maxTokens}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: user})

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&chatRequest{
			Model:       c.model,
			Messages:    msgs,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrModelUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", model.ErrModelUnavailable, resp.StatusCode(), resp.String())
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", model.ErrModelUnavailable)
	}
	return cr.Choices[0].Message.Content, nil
}
