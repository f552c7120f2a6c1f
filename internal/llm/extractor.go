package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
)

type ExtractorConfig struct {
	MaxTokens   int
	Temperature float32
	// CallTimeout bounds each completion; 0 leaves it to the caller's context.
	CallTimeout time.Duration
}

// ChunkExtractor turns one chunk into candidate records via a Completer.
// It never retries; retries belong to the Completer chain.
type ChunkExtractor struct {
	cfg    ExtractorConfig
	llm    Completer
	logger *slog.Logger
}

func NewChunkExtractor(cfg ExtractorConfig, c Completer, logger *slog.Logger) *ChunkExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &ChunkExtractor{cfg: cfg, llm: c, logger: logger}
}

// ExtractCandidates returns normalized candidates for one chunk.
// Transport failures are ExtractionServiceError; unusable replies are MalformedServiceResponse.
func (x *ChunkExtractor) ExtractCandidates(ctx context.Context, req ChunkRequest) ([]entity.Candidate, error) {
	log := logger.WithContext(ctx, x.logger).With("chunk", req.Index, "provider", x.llm.Name())
	start := time.Now()

	callCtx, cancel := common.WithTimeout(ctx, x.cfg.CallTimeout)
	defer cancel()

	log.Debug("llm.extract.start", "text_len", len(req.Text))
	resp, err := x.llm.Complete(callCtx, CompletionRequest{
		System:      BuildSystemPrompt(),
		Prompt:      BuildUserPrompt(req.Text),
		MaxTokens:   x.cfg.MaxTokens,
		Temperature: x.cfg.Temperature,
	})
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			log.Warn("llm.extract.bad_envelope", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			return nil, common.NewPipelineError(common.KindMalformedServiceResponse, common.ReasonBadJSON,
				"provider reply could not be decoded", err)
		}
		reason := common.ReasonTransport
		if ctx.Err() != nil {
			reason = common.ReasonCanceled
		}
		log.Error("llm.extract.http_error",
			"error", err,
			"status", statusOf(err),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewPipelineError(common.KindExtractionServiceError, reason,
			"extraction service call failed", err)
	}

	raw, err := ParseFencedArray(resp.Text)
	if err != nil && resp.Truncated {
		log.Warn("llm.extract.truncated",
			"max_tokens", x.cfg.MaxTokens,
			"output_tokens", resp.OutputTokens,
			"reply_len", len(resp.Text),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewPipelineError(common.KindMalformedServiceResponse, common.ReasonTruncated,
			"reply hit the output token limit", err)
	}
	if err != nil {
		log.Warn("llm.extract.malformed",
			"reason", common.ReasonOf(err),
			"reply_len", len(resp.Text),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	out := make([]entity.Candidate, 0, len(raw))
	for i, c := range raw {
		norm, changes := NormalizeCandidate(c)
		if len(changes) > 0 {
			log.Debug("llm.extract.normalize", "item", i, "changes", changes)
		}
		out = append(out, norm)
	}

	log.Info("llm.extract.ok",
		"model", resp.Model,
		"candidates", len(out),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
