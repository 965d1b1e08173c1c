package factory

import (
	"fmt"

	"product-advisor-be/pkg/llm"
	"product-advisor-be/pkg/llm/ollama"
	"product-advisor-be/pkg/llm/openai"
)

// NewLLMProvider selects a chat backend from configuration.
// "openrouter" is the OpenAI-compatible API with a different base URL.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(baseURL, apiKey, modelName), nil
	case "openrouter":
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		return openai.NewOpenAIProvider(baseURL, apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
