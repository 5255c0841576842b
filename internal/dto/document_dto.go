package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Filename string     `json:"filename" validate:"required,max=300"`
	Content  string     `json:"content" validate:"required"`
	Type     string     `json:"type" validate:"required,oneof=context interview"`
	ScopeId  *uuid.UUID `json:"scope_id"`
}

type CreateDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// UpdateDocumentRequest supersedes a document's content. The old chunk set is
// regenerated wholesale during reprocessing.
type UpdateDocumentRequest struct {
	Id       uuid.UUID
	Filename string `json:"filename" validate:"omitempty,max=300"`
	Content  string `json:"content" validate:"required"`
}

type UpdateDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ListDocumentsRequest struct {
	ScopeId *uuid.UUID
	Type    string
	Status  string
}

type DocumentResponse struct {
	Id         uuid.UUID  `json:"id"`
	ScopeId    *uuid.UUID `json:"scope_id"`
	Filename   string     `json:"filename"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	TokenCount int        `json:"token_count"`
	FailReason string     `json:"fail_reason,omitempty"`
	ChunkCount int64      `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// PublishProcessDocumentMessage is the internal queue payload that triggers
// chunking and embedding of a freshly stored document.
type PublishProcessDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
