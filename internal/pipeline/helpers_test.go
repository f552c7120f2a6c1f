package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/debt-tracker/internal/chunk"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/llm"
	"github.com/joseph-ayodele/debt-tracker/internal/pdftext"
	"github.com/joseph-ayodele/debt-tracker/internal/relevance"
	"github.com/joseph-ayodele/debt-tracker/internal/vault"
)

type stubSource struct {
	text string
	err  error
}

func (s stubSource) Extract(_ context.Context, _ string) (pdftext.Result, error) {
	if s.err != nil {
		return pdftext.Result{}, s.err
	}
	return pdftext.Result{Text: s.text, Pages: 1, Method: "stub"}, nil
}

// stubExtractor answers per chunk index and records which chunks were asked.
type stubExtractor struct {
	mu      sync.Mutex
	called  []int
	replies map[int][]entity.Candidate
	errs    map[int]error
	delay   func(index int) time.Duration
}

func (s *stubExtractor) ExtractCandidates(ctx context.Context, req llm.ChunkRequest) ([]entity.Candidate, error) {
	s.mu.Lock()
	s.called = append(s.called, req.Index)
	s.mu.Unlock()
	if s.delay != nil {
		select {
		case <-time.After(s.delay(req.Index)):
		case <-ctx.Done():
			return nil, common.NewPipelineError(common.KindExtractionServiceError, common.ReasonCanceled, "canceled", ctx.Err())
		}
	}
	if err := s.errs[req.Index]; err != nil {
		return nil, err
	}
	return s.replies[req.Index], nil
}

func (s *stubExtractor) calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.called...)
}

// seqCompleter returns replies in call order.
type seqCompleter struct {
	mu      sync.Mutex
	calls   int
	replies []string
}

func (s *seqCompleter) Name() string { return "seq" }

func (s *seqCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.replies) {
		return llm.CompletionResponse{Text: s.replies[i]}, nil
	}
	return llm.CompletionResponse{Text: "```json\n[]\n```"}, nil
}

func fenced(body string) string {
	return "```json\n" + body + "\n```"
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))
	return path
}

type procOpts struct {
	size        int
	overlap     int
	concurrency int
	protect     bool
}

func newProcessor(t *testing.T, src TextSource, x llm.CandidateExtractor, o procOpts) *Processor {
	t.Helper()
	sealer, err := vault.New("test-secret", o.protect)
	require.NoError(t, err)
	sp := chunk.NewSplitter(chunk.Config{Size: o.size, Overlap: o.overlap})
	return NewProcessor(nil,
		NewTextStage(src, sealer, nil),
		NewRelevanceStage(relevance.Default(), sealer, nil),
		NewExtractStage(sp, x, sealer, o.concurrency, nil),
	)
}

const reportText = "Relatório de clientes em atraso\nNome CPF Valor Vencimento Status Telefone\n"

// repeatRows returns text whose every window of size 100 contains a header token.
func repeatRows(n int) string {
	const row = "Nome do cliente em atraso, valor devido. "
	out := ""
	for range n {
		out += row
	}
	return out
}
