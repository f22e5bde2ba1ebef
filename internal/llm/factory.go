package llm

import (
	"characterstory/internal/config"
	"fmt"
	"strings"
)

const (
	DriverGemini = "gemini"
	DriverOpenAI = "openai"
)

// NewService instantiates a TextService implementation for the configured driver.
func NewService(cfg *config.Config) (TextService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.LLMDriver))
	switch driver {
	case DriverGemini, "":
		return NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiEndpoint, cfg.GeminiModel), nil
	case DriverOpenAI:
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unsupported llm driver: %s", cfg.LLMDriver)
	}
}
