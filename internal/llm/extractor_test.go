package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
)

func TestChunkExtractor_OK(t *testing.T) {
	stub := &stubCompleter{results: []stubResult{{resp: CompletionResponse{
		Text: "```json\n[{\"cpf\":\"12345678901\",\"nome\":\"Ana\",\"due_date\":\"\"}]\n```",
	}}}}
	x := NewChunkExtractor(ExtractorConfig{}, stub, nil)

	got, err := x.ExtractCandidates(context.Background(), ChunkRequest{Index: 0, Text: "Nome CPF"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "12345678901", got[0].String("id"))
	assert.Equal(t, "Ana", got[0].String("name"))
	assert.Equal(t, "PENDENTE", got[0].String("due_date"))

	assert.Equal(t, DefaultMaxTokens, stub.last.MaxTokens)
	assert.Contains(t, stub.last.Prompt, "Nome CPF")
	assert.NotEmpty(t, stub.last.System)
}

func TestChunkExtractor_Malformed(t *testing.T) {
	stub := &stubCompleter{results: []stubResult{{resp: CompletionResponse{Text: "sorry, no table"}}}}
	_, err := NewChunkExtractor(ExtractorConfig{}, stub, nil).
		ExtractCandidates(context.Background(), ChunkRequest{Text: "x"})
	assert.Equal(t, common.KindMalformedServiceResponse, common.KindOf(err))
}

func TestChunkExtractor_BadEnvelopeIsMalformed(t *testing.T) {
	stub := &stubCompleter{results: []stubResult{{err: fmt.Errorf("%w: no choices", ErrMalformedResponse)}}}
	_, err := NewChunkExtractor(ExtractorConfig{}, stub, nil).
		ExtractCandidates(context.Background(), ChunkRequest{Text: "x"})
	assert.Equal(t, common.KindMalformedServiceResponse, common.KindOf(err))
}

func TestChunkExtractor_ServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", &ErrHTTP{Status: 401, Body: "invalid key"}},
		{"quota", &ErrHTTP{Status: 429, Body: "quota"}},
		{"network", errors.New("dial tcp: connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCompleter{results: []stubResult{{err: tt.err}}}
			_, err := NewChunkExtractor(ExtractorConfig{}, stub, nil).
				ExtractCandidates(context.Background(), ChunkRequest{Text: "x"})
			assert.Equal(t, common.KindExtractionServiceError, common.KindOf(err))
			assert.Equal(t, common.ReasonTransport, common.ReasonOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestChunkExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubCompleter{results: []stubResult{{err: context.Canceled}}}

	_, err := NewChunkExtractor(ExtractorConfig{}, stub, nil).ExtractCandidates(ctx, ChunkRequest{Text: "x"})
	assert.Equal(t, common.KindExtractionServiceError, common.KindOf(err))
	assert.Equal(t, common.ReasonCanceled, common.ReasonOf(err))
}

func TestChunkExtractor_TruncatedReply(t *testing.T) {
	stub := &stubCompleter{results: []stubResult{{resp: CompletionResponse{
		Text:         "```json\n[{\"id\": \"12345678901\", \"name\": \"Ana\"}, {\"id\": \"1234",
		OutputTokens: 4096,
		Truncated:    true,
	}}}}
	_, err := NewChunkExtractor(ExtractorConfig{}, stub, nil).
		ExtractCandidates(context.Background(), ChunkRequest{Text: "x"})
	assert.Equal(t, common.KindMalformedServiceResponse, common.KindOf(err))
	assert.Equal(t, common.ReasonTruncated, common.ReasonOf(err))
}

func TestChunkExtractor_TruncatedButComplete(t *testing.T) {
	stub := &stubCompleter{results: []stubResult{{resp: CompletionResponse{
		Text:      "```json\n[{\"id\": \"12345678901\", \"name\": \"Ana\"}]\n```",
		Truncated: true,
	}}}}
	got, err := NewChunkExtractor(ExtractorConfig{}, stub, nil).
		ExtractCandidates(context.Background(), ChunkRequest{Text: "x"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
