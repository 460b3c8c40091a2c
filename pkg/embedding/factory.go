package embedding

import (
	"fmt"
	"time"
)

func NewProvider(providerType, apiKey, baseURL, model string, timeout time.Duration) (EmbeddingProvider, error) {
	switch providerType {
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires an api key")
		}
		return NewGeminiProvider(apiKey, timeout), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
