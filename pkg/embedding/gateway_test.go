package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// stubProvider derives a deterministic vector from the input text so order
// preservation is observable, and can fail a configured number of times.
type stubProvider struct {
	mu        sync.Mutex
	calls     int
	failFirst int
}

func (s *stubProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if call <= s.failFirst {
		return nil, fmt.Errorf("transient failure %d", call)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: []float32{float32(len(text)), 1},
		},
	}, nil
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	provider := &stubProvider{}
	gw := NewGateway(provider, 3, 4)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "ggggggg"}
	vectors, err := gw.EmbedBatch(context.Background(), texts, TaskTypeDocument)
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	for i, text := range texts {
		if vectors[i] == nil {
			t.Fatalf("slot %d is nil", i)
		}
		if int(vectors[i][0]) != len(text) {
			t.Errorf("slot %d holds vector for a different input: got %v for %q", i, vectors[i][0], text)
		}
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	gw := NewGateway(&stubProvider{}, 0, 0)

	vectors, err := gw.EmbedBatch(context.Background(), nil, TaskTypeDocument)
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil result for empty input, got %v", vectors)
	}
}

func TestEmbedOneRetriesTransientFailures(t *testing.T) {
	provider := &stubProvider{failFirst: 2}
	gw := NewGateway(provider, 1, 1)
	gw.baseDelay = time.Millisecond

	vec, err := gw.EmbedOne(context.Background(), "retry me", TaskTypeQuery)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(vec) == 0 {
		t.Fatal("expected a vector")
	}
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
}

func TestEmbedOneExhaustedRetries(t *testing.T) {
	provider := &stubProvider{failFirst: 100}
	gw := NewGateway(provider, 1, 1)
	gw.baseDelay = time.Millisecond

	_, err := gw.EmbedOne(context.Background(), "never works", TaskTypeQuery)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3 (bounded retries)", provider.calls)
	}
}

func TestEmbedOneHonorsCancellation(t *testing.T) {
	provider := &stubProvider{failFirst: 100}
	gw := NewGateway(provider, 1, 1)
	gw.baseDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := gw.EmbedOne(ctx, "cancelled", TaskTypeQuery)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
