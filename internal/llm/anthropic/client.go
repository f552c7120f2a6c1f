package anthropic

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

const apiVersion = "2023-06-01"

// Config for the Anthropic Messages client.
type Config struct {
	APIKey      string // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL     string // default https://api.anthropic.com
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ llm.Completer = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-7-sonnet-20250219"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = llm.DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}

func (c *Client) Name() string { return "anthropic" }

// Complete implements llm.Completer using the Messages API.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.cfg.Temperature
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  maxTokens,
		"temperature": temp,
		"messages": []map[string]any{
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.System != "" {
		body["system"] = req.System
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}, c.logger)
	if err != nil {
		return llm.CompletionResponse{}, err
	}

	var mr struct {
		Model      string `json:"model"`
		StopReason string `json:"stop_reason"`
		Content    []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &mr); err != nil {
		c.logger.Error("llm.anthropic.decode_error", "error", err, "raw_bytes", len(raw))
		return llm.CompletionResponse{}, fmt.Errorf("%w: decode anthropic response: %v", llm.ErrMalformedResponse, err)
	}

	var text strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		c.logger.Error("llm.anthropic.no_text", "blocks", len(mr.Content))
		return llm.CompletionResponse{}, fmt.Errorf("%w: no text content in anthropic response", llm.ErrMalformedResponse)
	}

	model := mr.Model
	if model == "" {
		model = c.cfg.Model
	}
	truncated := mr.StopReason == "max_tokens"
	if truncated {
		c.logger.Warn("llm.anthropic.truncated", "max_tokens", maxTokens, "output_tokens", mr.Usage.OutputTokens)
	}
	return llm.CompletionResponse{
		Text:         text.String(),
		Model:        model,
		InputTokens:  mr.Usage.InputTokens,
		OutputTokens: mr.Usage.OutputTokens,
		Truncated:    truncated,
	}, nil
}
