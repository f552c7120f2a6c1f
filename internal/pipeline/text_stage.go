package pipeline

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
	"github.com/joseph-ayodele/debt-tracker/internal/pdftext"
	"github.com/joseph-ayodele/debt-tracker/internal/vault"
)

// TextSource extracts plaintext from a validated PDF path.
type TextSource interface {
	Extract(ctx context.Context, path string) (pdftext.Result, error)
}

// SealedText is document text held in protected form between stages.
type SealedText struct {
	blob   []byte
	Pages  int
	Runes  int
	Method string
}

// TextStage validates the path, extracts text and seals it.
type TextStage struct {
	Source TextSource
	Sealer vault.Sealer
	Logger *slog.Logger
}

func NewTextStage(src TextSource, sealer vault.Sealer, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	if sealer == nil {
		sealer = vault.Plain{}
	}
	return &TextStage{Source: src, Sealer: sealer, Logger: logger}
}

func (s *TextStage) Run(ctx context.Context, path string) (SealedText, error) {
	log := logger.WithContext(ctx, s.Logger)

	if err := pdftext.ValidatePath(path); err != nil {
		log.Warn("pipeline.path.invalid", "reason", common.ReasonOf(err))
		return SealedText{}, err
	}

	res, err := s.Source.Extract(ctx, path)
	if err != nil {
		if common.KindOf(err) == common.KindNone {
			err = common.NewPipelineError(common.KindEmptyDocument, common.ReasonMalformed,
				"could not read PDF", err)
		}
		log.Warn("pipeline.text.failed", "reason", common.ReasonOf(err), "pages", res.Pages)
		return SealedText{}, err
	}

	blob, err := s.Sealer.Seal(res.Text)
	if err != nil {
		return SealedText{}, common.NewPipelineError(common.KindEmptyDocument, common.ReasonProtectFailure,
			"could not protect extracted text", err)
	}

	out := SealedText{blob: blob, Pages: res.Pages, Runes: utf8.RuneCountInString(res.Text), Method: res.Method}
	log.Info("pipeline.text.ok",
		"method", res.Method,
		"pages", res.Pages,
		"runes", out.Runes,
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds())
	return out, nil
}

// open returns the plaintext; an empty result is an EmptyDocument failure.
func open(sealer vault.Sealer, st SealedText) (string, error) {
	text, err := sealer.Open(st.blob)
	if err != nil {
		return "", common.NewPipelineError(common.KindEmptyDocument, common.ReasonProtectFailure,
			"could not open protected text", err)
	}
	if text == "" {
		return "", common.NewPipelineError(common.KindEmptyDocument, common.ReasonNoText,
			"document text is empty", nil)
	}
	return text, nil
}
