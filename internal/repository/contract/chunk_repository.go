package contract

import (
	"context"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChunkFilter narrows similarity search to a slice of the corpus.
// DocumentIDs takes precedence over ScopeID: when both are set the scope is
// ignored. When neither is set the whole corpus is searched.
type ChunkFilter struct {
	DocumentIDs  []uuid.UUID
	ScopeID      *uuid.UUID
	DocumentType string // empty means any type
}

// ScoredChunk wraps a Chunk with its cosine similarity to the query vector
type ScoredChunk struct {
	Chunk      *entity.Chunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	// ReplaceForDocument atomically swaps all chunks of a document for the
	// given set, re-chunking a document must never leave stale rows behind.
	ReplaceForDocument(ctx context.Context, documentId uuid.UUID, chunks []*entity.Chunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CountForFilter reports how many chunks fall inside the filter, used to
	// decide which synthesis mode a request can run in.
	CountForFilter(ctx context.Context, filter ChunkFilter) (int64, error)
	// SearchSimilar returns the limit nearest chunks inside the filter,
	// ordered by similarity descending with chunk_index as tie-break.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, filter ChunkFilter) ([]*ScoredChunk, error)
}
