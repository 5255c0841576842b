package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateScopeRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	FieldOfStudy  string `json:"field_of_study" validate:"max=255"`
	CoreObjective string `json:"core_objective"`
}

type CreateScopeResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateScopeRequest struct {
	Id            uuid.UUID
	Name          string `json:"name" validate:"required,max=200"`
	FieldOfStudy  string `json:"field_of_study" validate:"max=255"`
	CoreObjective string `json:"core_objective"`
}

type UpdateScopeResponse struct {
	Id uuid.UUID `json:"id"`
}

type ScopeResponse struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	FieldOfStudy  string    `json:"field_of_study"`
	CoreObjective string    `json:"core_objective"`
	// Availability is derived from the chunks actually indexed for the scope,
	// never stored: stored flags drift when documents come and go.
	IncludesContext    bool       `json:"includes_context"`
	IncludesInterviews bool       `json:"includes_interviews"`
	DocumentCount      int64      `json:"document_count"`
	PersonaSetCount    int64      `json:"persona_set_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
}
