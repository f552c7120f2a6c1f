package llm

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// retryCompleter retries transient HTTP errors (429, 503) with exponential backoff.
type retryCompleter struct {
	inner       Completer
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

type RetryOption func(*retryCompleter)

// RetryMaxAttempts sets the maximum number of attempts (default: 3).
func RetryMaxAttempts(n int) RetryOption {
	return func(r *retryCompleter) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// RetryBaseDelay sets the delay before the second attempt (default: 1s); it doubles each time.
func RetryBaseDelay(d time.Duration) RetryOption {
	return func(r *retryCompleter) { r.baseDelay = d }
}

func RetryLogger(l *slog.Logger) RetryOption {
	return func(r *retryCompleter) { r.logger = l }
}

// WithRetry wraps c with retries on transient errors. The server's Retry-After is a floor.
func WithRetry(c Completer, opts ...RetryOption) Completer {
	r := &retryCompleter{inner: c, maxAttempts: 3, baseDelay: time.Second}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

func (r *retryCompleter) Name() string { return r.inner.Name() }

func (r *retryCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	var last error
	for i := 0; i < r.maxAttempts; i++ {
		resp, err := r.inner.Complete(ctx, req)
		if err == nil || !IsTransient(err) {
			return resp, err
		}
		last = err
		r.logger.Warn("llm.retry.transient",
			"provider", r.inner.Name(),
			"status", statusOf(err),
			"attempt", i+1,
			"max_attempts", r.maxAttempts)
		if i < r.maxAttempts-1 {
			timer := time.NewTimer(retryDelay(r.baseDelay, i, err))
			select {
			case <-ctx.Done():
				timer.Stop()
				return CompletionResponse{}, ctx.Err()
			case <-timer.C:
			}
		}
	}
	r.logger.Error("llm.retry.exhausted",
		"provider", r.inner.Name(),
		"attempts", r.maxAttempts,
		"error", last)
	return CompletionResponse{}, last
}

func retryDelay(base time.Duration, i int, err error) time.Duration {
	backoff := retryBackoff(base, i)
	if ra := retryAfterOf(err); ra > backoff {
		return ra
	}
	return backoff
}

// retryBackoff is base * 2^i plus up to 50% jitter.
func retryBackoff(base time.Duration, i int) time.Duration {
	if base <= 0 {
		return 0
	}
	exp := base * (1 << i)
	jitter := time.Duration(rand.Int63n(int64(exp)/2 + 1))
	return exp + jitter
}
