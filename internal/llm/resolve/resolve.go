// Package resolve builds the configured Completer chain.
package resolve

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/llm/anthropic"
	"github.com/joseph-ayodele/debt-tracker/internal/llm/openai"
)

// Completer returns provider -> retry -> rate limit, outermost last.
func Completer(cfg common.LLMConfig, logger *slog.Logger) (llm.Completer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var base llm.Completer
	switch cfg.Provider {
	case common.ProviderOpenAI, "":
		base = openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case common.ProviderAnthropic:
		base = anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("resolve: unknown provider %q", cfg.Provider)
	}

	c := llm.WithRetry(base, llm.RetryMaxAttempts(cfg.MaxAttempts), llm.RetryLogger(logger))
	return llm.WithRateLimit(c, cfg.RPM), nil
}
