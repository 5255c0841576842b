package entity

import (
	"time"

	"github.com/google/uuid"
)

type Scope struct {
	Id            uuid.UUID
	Name          string
	FieldOfStudy  string
	CoreObjective string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// ScopeAvailability is derived per request from the documents actually in the
// scope, never stored: stored flags drift.
type ScopeAvailability struct {
	IncludesContext    bool
	IncludesInterviews bool
}
