package dto

import (
	"time"

	"persona-forge-be/internal/entity"

	"github.com/google/uuid"
)

type GeneratePersonaSetRequest struct {
	PersonaCount int         `json:"persona_count" validate:"required,min=1,max=20"`
	ScopeId      *uuid.UUID  `json:"scope_id"`
	DocumentIds  []uuid.UUID `json:"document_ids"`
	// Operator-supplied free text, passed through into the prompt verbatim.
	UserContext       string `json:"user_context"`
	Topic             string `json:"topic"`
	Methodology       string `json:"methodology"`
	OutputFormat      string `json:"output_format" validate:"omitempty,oneof=json profile chat proto adhoc engaging goal_based role_based interactive"`
	EthicalGuardrails bool   `json:"ethical_guardrails"`
	// Iterative regeneration keeps re-prompting with diversity hints until the
	// RQE score clears the threshold or the iteration budget runs out.
	Iterative     bool     `json:"iterative"`
	RQEThreshold  *float64 `json:"rqe_threshold" validate:"omitempty,min=0,max=1"`
	MaxIterations *int     `json:"max_iterations" validate:"omitempty,min=1,max=10"`
}

type PersonaDTO struct {
	Id               uuid.UUID                 `json:"id"`
	Name             string                    `json:"name"`
	StructuredFields map[string]interface{}    `json:"structured_fields"`
	ValidationScore  *float64                  `json:"validation_score,omitempty"`
	ValidationStatus string                    `json:"validation_status,omitempty"`
	ValidationDetail *entity.PersonaValidation `json:"validation_detail,omitempty"`
	ExpansionError   *string                   `json:"expansion_error,omitempty"`
}

type PersonaSetResponse struct {
	Id                uuid.UUID                 `json:"id"`
	ScopeId           *uuid.UUID                `json:"scope_id"`
	GenerationCycle   int                       `json:"generation_cycle"`
	Mode              string                    `json:"mode"`
	Status            string                    `json:"status"`
	RequestedCount    int                       `json:"requested_count"`
	DiversityScore    *float64                  `json:"diversity_score,omitempty"`
	RQEMetrics        *entity.RQEMetrics        `json:"rqe_metrics,omitempty"`
	ValidationSummary *entity.ValidationSummary `json:"validation_summary,omitempty"`
	Personas          []PersonaDTO              `json:"personas"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         *time.Time                `json:"updated_at"`
}

type GeneratePersonaSetResponse struct {
	PersonaSet PersonaSetResponse `json:"persona_set"`
	// Flagged is set when the model returned fewer personas than requested.
	Flagged bool   `json:"flagged"`
	Warning string `json:"warning,omitempty"`
}

type ExpandPersonaSetRequest struct {
	Id uuid.UUID
	// Fields restricts which structured fields get deepened. Empty means all
	// expandable fields.
	Fields []string `json:"fields" validate:"omitempty,dive,oneof=background goals frustrations behaviors motivations tech_comfort quotes"`
}

type ExpandPersonaSetResponse struct {
	Id       uuid.UUID `json:"id"`
	Expanded int       `json:"expanded"`
	Failed   int       `json:"failed"`
	Status   string    `json:"status"`
}

type ScorePersonaSetResponse struct {
	Id             uuid.UUID         `json:"id"`
	DiversityScore float64           `json:"diversity_score"`
	Metrics        entity.RQEMetrics `json:"metrics"`
	Status         string            `json:"status"`
}

type ValidatePersonaSetResponse struct {
	Id       uuid.UUID                `json:"id"`
	Summary  entity.ValidationSummary `json:"summary"`
	Personas []PersonaDTO             `json:"personas"`
	Status   string                   `json:"status"`
}

type ListPersonaSetsRequest struct {
	ScopeId *uuid.UUID
	Status  string
	Limit   int
	Offset  int
}

type PersonaSetListItem struct {
	Id              uuid.UUID  `json:"id"`
	ScopeId         *uuid.UUID `json:"scope_id"`
	GenerationCycle int        `json:"generation_cycle"`
	Mode            string     `json:"mode"`
	Status          string     `json:"status"`
	RequestedCount  int        `json:"requested_count"`
	DiversityScore  *float64   `json:"diversity_score,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ListPersonaSetsResponse struct {
	Items []PersonaSetListItem `json:"items"`
	Total int64                `json:"total"`
}
