package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID
	ScopeId    *uuid.UUID
	Type       string
	Filename   string
	RawText    string
	TokenCount int
	Status     string
	FailReason string
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
