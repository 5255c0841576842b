package llm

import (
	"context"
	"time"
)

// RetryingProvider wraps another provider with bounded retries and
// exponential backoff. Only transport-level failures reach this layer;
// response parsing happens above it and is never retried.
type RetryingProvider struct {
	inner       LLMProvider
	maxAttempts int
	baseDelay   time.Duration
}

var _ LLMProvider = &RetryingProvider{}

func NewRetryingProvider(inner LLMProvider, maxAttempts int) *RetryingProvider {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &RetryingProvider{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   time.Second,
	}
}

func (r *RetryingProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		res, err := r.inner.Chat(ctx, history, options...)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", lastErr
}

func (r *RetryingProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return r.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}
