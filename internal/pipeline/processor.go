// Package pipeline runs a PDF through path validation, text extraction, the
// relevance gate and structured extraction, returning a classified Result.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/debt-tracker/internal/chunk"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
	"github.com/joseph-ayodele/debt-tracker/internal/pdftext"
	"github.com/joseph-ayodele/debt-tracker/internal/relevance"
	"github.com/joseph-ayodele/debt-tracker/internal/validate"
	"github.com/joseph-ayodele/debt-tracker/internal/vault"
)

// Result is the outcome of one run. A terminal Kind always comes with no records.
type Result struct {
	RunID      uuid.UUID             `json:"run_id"`
	Records    []entity.ClientRecord `json:"records"`
	Rejections []validate.Rejection  `json:"-"`
	Kind       common.ErrorKind      `json:"error_kind,omitempty"`
	Reason     string                `json:"reason,omitempty"`
	Message    string                `json:"message,omitempty"`
	Summary    entity.RunSummary     `json:"summary"`
	Err        error                 `json:"-"`
}

// OK reports whether the run finished without a terminal failure.
func (r *Result) OK() bool { return !r.Kind.Terminal() }

// Processor coordinates the stages. It holds no per-run state and is safe to share.
type Processor struct {
	Logger    *slog.Logger
	Text      *TextStage
	Relevance *RelevanceStage
	Extract   *ExtractStage
	Observer  Observer
}

func NewProcessor(logger *slog.Logger, text *TextStage, rel *RelevanceStage, ext *ExtractStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Relevance: rel, Extract: ext, Observer: NopObserver{}}
}

// WithObserver attaches o to the processor and its extract stage.
func (p *Processor) WithObserver(o Observer) *Processor {
	if o == nil {
		o = NopObserver{}
	}
	p.Observer = o
	if p.Extract != nil {
		p.Extract.Observer = o
	}
	return p
}

// Build wires a Processor from configuration and a candidate extractor.
func Build(cfg *common.Config, x llm.CandidateExtractor, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sealer, err := vault.New(cfg.Secret, cfg.Pipeline.ProtectText)
	if err != nil {
		return nil, common.WrapError(err, "failed to create text vault")
	}
	src := pdftext.NewExtractor(pdftext.Config{
		Pdftotext: cfg.Pipeline.PdftotextPath,
		MaxPages:  cfg.Pipeline.MaxPages,
	}, logger)
	splitter := chunk.NewSplitter(chunk.Config{
		Size:         cfg.Pipeline.ChunkSize,
		Overlap:      cfg.Pipeline.ChunkOverlap,
		HeaderTokens: cfg.Pipeline.HeaderTokens,
	})
	return NewProcessor(logger,
		NewTextStage(src, sealer, logger),
		NewRelevanceStage(relevance.Default(), sealer, logger),
		NewExtractStage(splitter, x, sealer, cfg.Pipeline.Concurrency, logger),
	), nil
}

// Process runs every stage for path. It never returns a nil Result.
func (p *Processor) Process(ctx context.Context, path string) *Result {
	start := time.Now()
	res := &Result{RunID: uuid.New(), Records: []entity.ClientRecord{}}
	ctx = common.WithRunID(ctx, res.RunID.String())
	log := logger.WithContext(ctx, p.Logger)

	defer func() {
		res.Summary.ElapsedMs = time.Since(start).Milliseconds()
		p.Observer.RunFinished(res)
	}()

	st, err := p.Text.Run(ctx, path)
	if err != nil {
		return p.fail(log, res, err)
	}
	res.Summary.Pages = st.Pages
	res.Summary.TextRunes = st.Runes

	if err := p.Relevance.Run(ctx, st); err != nil {
		return p.fail(log, res, err)
	}

	out, err := p.Extract.Run(ctx, st)
	res.Summary.ChunksTotal = out.ChunksTotal
	res.Summary.ChunksSent = out.ChunksSent
	res.Summary.ChunksSkipped = out.ChunksSkipped
	res.Summary.ChunksMalformed = out.ChunksMalformed
	if err != nil {
		return p.fail(log, res, err)
	}
	res.Summary.Candidates = out.Raw
	res.Summary.Duplicates = out.Duplicates

	records, rejections := validate.Records(out.Candidates)
	res.Records = records
	res.Rejections = rejections
	res.Summary.RecordsAccepted = len(records)
	res.Summary.RecordsRejected = len(rejections)
	for _, r := range rejections {
		if res.Summary.RejectedByField == nil {
			res.Summary.RejectedByField = make(map[string]int)
		}
		for _, f := range r.Fields() {
			res.Summary.RejectedByField[f]++
		}
	}

	// Absorbed failures are reported on a successful run so callers can surface them.
	switch {
	case res.Summary.ChunksMalformed > 0:
		res.Kind = common.KindMalformedServiceResponse
		res.Message = "some chunks returned an unusable reply"
	case len(rejections) > 0:
		res.Kind = common.KindRecordValidationFailure
		res.Message = "some records failed validation"
	}

	log.Info("pipeline.run.ok",
		"records", len(records),
		"rejected", len(rejections),
		"malformed_chunks", res.Summary.ChunksMalformed,
		"elapsed_ms", time.Since(start).Milliseconds())
	return res
}

func (p *Processor) fail(log *slog.Logger, res *Result, err error) *Result {
	res.Records = []entity.ClientRecord{}
	res.Kind = common.KindOf(err)
	if res.Kind == common.KindNone {
		res.Kind = common.KindExtractionServiceError
	}
	res.Reason = common.ReasonOf(err)
	res.Message = messageFor(res.Kind, res.Reason)
	res.Err = err
	log.Warn("pipeline.run.failed", "kind", res.Kind, "reason", res.Reason, "error", err)
	return res
}

func messageFor(kind common.ErrorKind, reason string) string {
	switch kind {
	case common.KindInvalidPath:
		switch reason {
		case common.ReasonWrongType:
			return "the selected file is not a PDF"
		case common.ReasonNotFound:
			return "the selected file does not exist"
		case common.ReasonPermission:
			return "the selected file cannot be read"
		}
		return "the selected path is not a usable PDF file"
	case common.KindEmptyDocument:
		switch reason {
		case common.ReasonMalformed:
			return "the PDF is damaged or uses an unsupported structure"
		case common.ReasonNoPages:
			return "the PDF has no pages"
		}
		return "no text could be extracted from the PDF"
	case common.KindIrrelevantDocument:
		return "the PDF does not look like an overdue-client report"
	case common.KindExtractionServiceError:
		if reason == common.ReasonCanceled {
			return "extraction was canceled"
		}
		return "the extraction service could not be reached"
	}
	return string(kind)
}
