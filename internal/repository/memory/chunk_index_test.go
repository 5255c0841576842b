package memory

import (
	"context"
	"testing"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/contract"

	"github.com/google/uuid"
)

func seedChunk(docId uuid.UUID, scopeId *uuid.UUID, docType string, index int, embedding []float32) *entity.Chunk {
	return &entity.Chunk{
		DocumentId:   docId,
		ChunkIndex:   index,
		Text:         "chunk",
		Embedding:    embedding,
		DocumentType: docType,
		ScopeId:      scopeId,
	}
}

func TestChunkIndexSearchOrdersBySimilarity(t *testing.T) {
	idx := NewChunkIndex()
	docId := uuid.New()

	chunks := []*entity.Chunk{
		seedChunk(docId, nil, "context", 0, []float32{1, 0}),
		seedChunk(docId, nil, "context", 1, []float32{0, 1}),
		seedChunk(docId, nil, "context", 2, []float32{0.9, 0.1}),
	}
	if err := idx.CreateBulk(context.Background(), chunks); err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}

	results, err := idx.SearchSimilar(context.Background(), []float32{1, 0}, 3, contract.ChunkFilter{})
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Chunk.ChunkIndex != 0 {
		t.Errorf("expected exact match first, got chunk %d", results[0].Chunk.ChunkIndex)
	}
	if results[1].Chunk.ChunkIndex != 2 {
		t.Errorf("expected near match second, got chunk %d", results[1].Chunk.ChunkIndex)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not sorted by similarity at %d", i)
		}
	}
}

func TestChunkIndexDocumentIDsWinOverScope(t *testing.T) {
	idx := NewChunkIndex()
	scopeId := uuid.New()
	inScopeDoc := uuid.New()
	otherDoc := uuid.New()

	if err := idx.CreateBulk(context.Background(), []*entity.Chunk{
		seedChunk(inScopeDoc, &scopeId, "interview", 0, []float32{1, 0}),
		seedChunk(otherDoc, nil, "interview", 0, []float32{1, 0}),
	}); err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}

	// Filter names the out-of-scope document explicitly, the scope must be ignored.
	results, err := idx.SearchSimilar(context.Background(), []float32{1, 0}, 10, contract.ChunkFilter{
		DocumentIDs: []uuid.UUID{otherDoc},
		ScopeID:     &scopeId,
	})
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Chunk.DocumentId != otherDoc {
		t.Errorf("expected chunk from the explicitly named document")
	}
}

func TestChunkIndexTypeFilter(t *testing.T) {
	idx := NewChunkIndex()
	ctxDoc := uuid.New()
	intDoc := uuid.New()

	if err := idx.CreateBulk(context.Background(), []*entity.Chunk{
		seedChunk(ctxDoc, nil, "context", 0, []float32{1, 0}),
		seedChunk(intDoc, nil, "interview", 0, []float32{1, 0}),
	}); err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}

	results, err := idx.SearchSimilar(context.Background(), []float32{1, 0}, 10, contract.ChunkFilter{
		DocumentType: "interview",
	})
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.DocumentType != "interview" {
		t.Fatalf("expected only the interview chunk, got %d results", len(results))
	}
}

func TestChunkIndexReplaceForDocument(t *testing.T) {
	idx := NewChunkIndex()
	docId := uuid.New()

	if err := idx.CreateBulk(context.Background(), []*entity.Chunk{
		seedChunk(docId, nil, "context", 0, []float32{1, 0}),
		seedChunk(docId, nil, "context", 1, []float32{1, 0}),
	}); err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}

	if err := idx.ReplaceForDocument(context.Background(), docId, []*entity.Chunk{
		seedChunk(docId, nil, "context", 0, []float32{0, 1}),
	}); err != nil {
		t.Fatalf("ReplaceForDocument: %v", err)
	}

	count, err := idx.CountForFilter(context.Background(), contract.ChunkFilter{DocumentIDs: []uuid.UUID{docId}})
	if err != nil {
		t.Fatalf("CountForFilter: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 chunk after replace, got %d", count)
	}
}

func TestChunkIndexCosineIgnoresMagnitude(t *testing.T) {
	idx := NewChunkIndex()
	docId := uuid.New()

	if err := idx.CreateBulk(context.Background(), []*entity.Chunk{
		seedChunk(docId, nil, "context", 0, []float32{10, 0}),
	}); err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}

	results, err := idx.SearchSimilar(context.Background(), []float32{0.5, 0}, 1, contract.ChunkFilter{})
	if err != nil {
		t.Fatalf("SearchSimilar: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if sim := results[0].Similarity; sim < 0.999 || sim > 1.001 {
		t.Errorf("expected similarity ~1.0 for parallel vectors, got %f", sim)
	}
}
