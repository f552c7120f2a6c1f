package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/debt-tracker/internal/chunk"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
	"github.com/joseph-ayodele/debt-tracker/internal/vault"
)

// ExtractOutput is the merged candidate list plus chunk accounting.
type ExtractOutput struct {
	Candidates      []entity.Candidate
	ChunksTotal     int
	ChunksSent      int
	ChunksSkipped   int
	ChunksMalformed int
	Raw             int
	Duplicates      int
}

// ExtractStage chunks the text and asks the extractor for candidates per eligible chunk.
type ExtractStage struct {
	Splitter    *chunk.Splitter
	Extractor   llm.CandidateExtractor
	Sealer      vault.Sealer
	Concurrency int
	Observer    Observer
	Logger      *slog.Logger
}

func NewExtractStage(sp *chunk.Splitter, x llm.CandidateExtractor, sealer vault.Sealer, concurrency int, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	if sp == nil {
		sp = chunk.NewSplitter(chunk.Config{})
	}
	if sealer == nil {
		sealer = vault.Plain{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &ExtractStage{
		Splitter:    sp,
		Extractor:   x,
		Sealer:      sealer,
		Concurrency: concurrency,
		Observer:    NopObserver{},
		Logger:      logger,
	}
}

// Run fans eligible chunks out to the extractor with at most Concurrency calls in
// flight and merges the replies in chunk index order. A terminal error stops new calls.
func (s *ExtractStage) Run(ctx context.Context, st SealedText) (ExtractOutput, error) {
	log := logger.WithContext(ctx, s.Logger)

	text, err := open(s.Sealer, st)
	if err != nil {
		return ExtractOutput{}, err
	}
	chunks := s.Splitter.Split(text)
	eligible := chunk.Eligible(chunks)

	out := ExtractOutput{
		ChunksTotal:   len(chunks),
		ChunksSkipped: len(chunks) - len(eligible),
	}
	if len(eligible) == 0 {
		log.Info("pipeline.extract.no_eligible_chunks", "chunks", len(chunks))
		return out, nil
	}

	results := make([][]entity.Candidate, len(eligible))
	var sent, malformed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i, c := range eligible {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			sent.Add(1)
			start := time.Now()
			cands, err := s.Extractor.ExtractCandidates(gctx, llm.ChunkRequest{Index: c.Index, Text: c.Text})
			kind := common.KindOf(err)
			if err != nil && kind == common.KindNone {
				kind = common.KindExtractionServiceError
				err = common.NewPipelineError(kind, common.ReasonTransport, "extraction service failed", err)
			}
			s.Observer.ChunkFinished(c.Index, kind, time.Since(start))

			switch {
			case err == nil:
				results[i] = cands
				return nil
			case kind == common.KindMalformedServiceResponse:
				malformed.Add(1)
				log.Warn("pipeline.extract.chunk_malformed", "chunk", c.Index, "reason", common.ReasonOf(err))
				return nil
			default:
				return err
			}
		})
	}
	werr := g.Wait()

	out.ChunksSent = int(sent.Load())
	out.ChunksMalformed = int(malformed.Load())
	if werr != nil {
		log.Error("pipeline.extract.failed", "error", werr, "sent", out.ChunksSent)
		return out, werr
	}
	if err := ctx.Err(); err != nil {
		return out, common.NewPipelineError(common.KindExtractionServiceError, common.ReasonCanceled,
			"extraction canceled", err)
	}

	for _, r := range results {
		out.Raw += len(r)
	}
	out.Candidates, out.Duplicates = Merge(results)
	log.Info("pipeline.extract.ok",
		"chunks", out.ChunksTotal,
		"sent", out.ChunksSent,
		"skipped", out.ChunksSkipped,
		"malformed", out.ChunksMalformed,
		"candidates", len(out.Candidates),
		"duplicates", out.Duplicates)
	return out, nil
}
