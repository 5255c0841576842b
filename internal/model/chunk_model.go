package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Chunk rows are regenerated wholesale when a document is reprocessed, so
// they carry no soft-delete column: replacement is a hard delete plus bulk
// insert inside one transaction. DocumentType and ScopeId are denormalized
// from the owning document so similarity queries filter without joins.
type Chunk struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_chunks_doc_index,priority:1"`
	ChunkIndex   int             `gorm:"not null;uniqueIndex:idx_chunks_doc_index,priority:2"`
	TokenStart   int             `gorm:"default:0"`
	TokenEnd     int             `gorm:"default:0"`
	Text         string          `gorm:"type:text;not null"`
	Embedding    pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 and nomic-embed-text both use 768 dimensions
	DocumentType string          `gorm:"type:varchar(20);not null;index"`
	ScopeId      *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return "chunks"
}
