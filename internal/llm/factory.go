package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fakeyai/verdict/internal/config"
)

// NewClient builds the report-writing text client for the configured
// provider. Ollama runs through its OpenAI-compatible endpoint.
func NewClient(ctx context.Context, cfg config.LLMConfig) (TextClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		// Shares the gateway's credential slot when none is configured.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("API_KEY")
		}
		return NewGeminiClient(ctx, apiKey, cfg.Model)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}

		// Ollama ignores the API key but the client config requires one.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
