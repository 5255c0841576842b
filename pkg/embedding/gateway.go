package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnavailable is returned when the provider keeps failing after the retry
// budget is exhausted. Callers distinguish it from deterministic failures.
var ErrUnavailable = errors.New("embedding: provider unavailable")

const (
	defaultBatchSize   = 16
	defaultWorkers     = 4
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// Gateway batches embedding calls against a provider. Results are
// order-preserving: output index i always corresponds to input index i.
// The gateway never caches; persistence is the caller's decision.
type Gateway struct {
	provider    EmbeddingProvider
	batchSize   int
	workers     int
	maxAttempts int
	baseDelay   time.Duration
}

func NewGateway(provider EmbeddingProvider, batchSize, workers int) *Gateway {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Gateway{
		provider:    provider,
		batchSize:   batchSize,
		workers:     workers,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
}

// EmbedOne embeds a single text with the retry policy of the gateway.
func (g *Gateway) EmbedOne(ctx context.Context, text string, taskType string) ([]float32, error) {
	return g.generateWithRetry(ctx, text, taskType)
}

// EmbedBatch embeds texts in batches, fanning each batch out to a bounded
// worker pool. Output slot i holds the vector for texts[i]; ordering is
// preserved regardless of worker completion order. The first failure cancels
// the remaining work.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))

	for batchStart := 0; batchStart < len(texts); batchStart += g.batchSize {
		batchEnd := batchStart + g.batchSize
		if batchEnd > len(texts) {
			batchEnd = len(texts)
		}

		batchCtx, cancel := context.WithCancel(ctx)

		var wg sync.WaitGroup
		var mu sync.Mutex
		var firstErr error

		sem := make(chan struct{}, g.workers)
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(idx int) {
				defer wg.Done()
				defer func() { <-sem }()

				vec, err := g.generateWithRetry(batchCtx, texts[idx], taskType)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
					return
				}
				results[idx] = vec
			}(i)
		}

		wg.Wait()
		cancel()

		if firstErr != nil {
			return nil, firstErr
		}
	}

	return results, nil
}

func (g *Gateway) generateWithRetry(ctx context.Context, text string, taskType string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		res, err := g.provider.Generate(ctx, text, taskType)
		if err == nil {
			if len(res.Embedding.Values) == 0 {
				lastErr = errors.New("provider returned empty vector")
				continue
			}
			return res.Embedding.Values, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, g.maxAttempts, lastErr)
}
