package embeddings

import "fmt"

// NewProvider returns the embedding provider named by cfg-style inputs.
func NewProvider(provider, model, ollamaURL, openaiBaseURL, openaiKey string) (Provider, error) {
	switch provider {
	case "ollama":
		return NewOllamaProvider(ollamaURL, model), nil
	case "openai":
		return NewOpenAIProvider(openaiBaseURL, openaiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported embed provider: %s", provider)
	}
}
