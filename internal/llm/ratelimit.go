package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type rateLimitCompleter struct {
	inner   Completer
	limiter *rate.Limiter
}

// WithRateLimit blocks calls so that at most rpm start per minute. rpm <= 0 returns c unchanged.
func WithRateLimit(c Completer, rpm int) Completer {
	if rpm <= 0 {
		return c
	}
	return &rateLimitCompleter{
		inner:   c,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

func (r *rateLimitCompleter) Name() string { return r.inner.Name() }

func (r *rateLimitCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return CompletionResponse{}, err
	}
	return r.inner.Complete(ctx, req)
}
