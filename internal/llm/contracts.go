package llm

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/debt-tracker/internal/entity"
)

// DefaultMaxTokens leaves room for a full JSON array of a dense 4000-rune chunk.
const DefaultMaxTokens = 4096

// ErrMalformedResponse marks a 2xx reply whose envelope could not be decoded.
var ErrMalformedResponse = errors.New("malformed service response")

// CompletionRequest is one provider-agnostic text completion.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

type CompletionResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	// Truncated is set when the provider stopped at the output token limit.
	Truncated bool
}

// Completer is the transport contract every provider implements.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// ChunkRequest carries one eligible chunk to the extractor.
type ChunkRequest struct {
	Index int
	Text  string
}

// CandidateExtractor is the interface our pipeline depends on.
type CandidateExtractor interface {
	ExtractCandidates(ctx context.Context, req ChunkRequest) ([]entity.Candidate, error)
}
