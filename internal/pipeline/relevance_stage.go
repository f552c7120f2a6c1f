package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
	"github.com/joseph-ayodele/debt-tracker/internal/relevance"
	"github.com/joseph-ayodele/debt-tracker/internal/vault"
)

// RelevanceStage rejects documents that do not look like delinquency reports.
type RelevanceStage struct {
	Filter *relevance.Filter
	Sealer vault.Sealer
	Logger *slog.Logger
}

func NewRelevanceStage(f *relevance.Filter, sealer vault.Sealer, logger *slog.Logger) *RelevanceStage {
	if logger == nil {
		logger = slog.Default()
	}
	if f == nil {
		f = relevance.Default()
	}
	if sealer == nil {
		sealer = vault.Plain{}
	}
	return &RelevanceStage{Filter: f, Sealer: sealer, Logger: logger}
}

func (s *RelevanceStage) Run(ctx context.Context, st SealedText) error {
	text, err := open(s.Sealer, st)
	if err != nil {
		return err
	}
	v := s.Filter.Check(text)
	log := logger.WithContext(ctx, s.Logger)
	if !v.Relevant {
		log.Info("pipeline.relevance.rejected", "primary", v.Primary, "secondary", v.Secondary)
		return common.NewPipelineError(common.KindIrrelevantDocument, common.ReasonNoKeywords,
			"document does not look like a delinquency report", nil)
	}
	log.Debug("pipeline.relevance.ok", "primary", v.Primary, "secondary", v.Secondary)
	return nil
}
