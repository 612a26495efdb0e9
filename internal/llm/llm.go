package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/pulseboard/social-listener/internal/config"
)

// ErrEmptyResponse is returned when a provider answers without any text
var ErrEmptyResponse = errors.New("empty model response")

// Generator produces a text completion for a system and user prompt
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Name() string
}

// New creates the generator selected by cfg.LLMProvider
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMMaxTokens)
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMMaxTokens)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
