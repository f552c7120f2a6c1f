package llm

import (
	"context"
	"sync"
)

// stubCompleter returns pre-configured results in order.
type stubCompleter struct {
	mu      sync.Mutex
	calls   int
	results []stubResult
	last    CompletionRequest
}

type stubResult struct {
	resp CompletionResponse
	err  error
}

func (s *stubCompleter) Name() string { return "stub" }

func (s *stubCompleter) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	s.last = req
	if i < len(s.results) {
		return s.results[i].resp, s.results[i].err
	}
	return CompletionResponse{}, nil
}

var _ Completer = (*stubCompleter)(nil)
