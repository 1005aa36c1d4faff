package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIProvider calls any OpenAI-compatible embeddings endpoint.
type OpenAIProvider struct {
	client *resty.Client
	model  string
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible API.
func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &OpenAIProvider{client: c, model: model}
}

type openaiEmbedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&openaiEmbedRequest{Input: text, Model: p.model}).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode(), resp.String())
	}

	var er openaiEmbedResponse
	if err := json.Unmarshal(resp.Body(), &er); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(er.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return er.Data[0].Embedding, nil
}
