package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is the unit of embedding and retrieval. DocumentType and ScopeId
// mirror the owning document for filterable similarity search.
type Chunk struct {
	Id           uuid.UUID
	DocumentId   uuid.UUID
	ChunkIndex   int
	TokenStart   int
	TokenEnd     int
	Text         string
	Embedding    []float32
	DocumentType string
	ScopeId      *uuid.UUID
	CreatedAt    time.Time
}
