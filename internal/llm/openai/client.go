package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/debt-tracker/internal/llm"
)

// Config for the OpenAI-compatible client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ llm.Completer = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return "openai" }

// Complete implements llm.Completer using chat/completions.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	temp := req.Temperature
	if temp == 0 {
		temp = c.cfg.Temperature
	}
	messages := make([]map[string]any, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": req.Prompt})

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": temp,
		"messages":    messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}, c.logger)
	if err != nil {
		return llm.CompletionResponse{}, err
	}

	var cc struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.openai.decode_error", "error", err, "raw_bytes", len(raw))
		return llm.CompletionResponse{}, fmt.Errorf("%w: decode openai response: %v", llm.ErrMalformedResponse, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.openai.no_choices", "raw_bytes", len(raw))
		return llm.CompletionResponse{}, fmt.Errorf("%w: no choices in openai response", llm.ErrMalformedResponse)
	}

	model := cc.Model
	if model == "" {
		model = c.cfg.Model
	}
	truncated := cc.Choices[0].FinishReason == "length"
	if truncated {
		c.logger.Warn("llm.openai.truncated", "max_tokens", req.MaxTokens, "output_tokens", cc.Usage.CompletionTokens)
	}
	return llm.CompletionResponse{
		Text:         strings.TrimSpace(cc.Choices[0].Message.Content),
		Model:        model,
		InputTokens:  cc.Usage.PromptTokens,
		OutputTokens: cc.Usage.CompletionTokens,
		Truncated:    truncated,
	}, nil
}
