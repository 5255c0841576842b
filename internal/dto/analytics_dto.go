package dto

import (
	"time"

	"github.com/google/uuid"
)

// DiversityTrendPoint is one generation cycle on the diversity trend chart.
type DiversityTrendPoint struct {
	PersonaSetId    uuid.UUID `json:"persona_set_id"`
	GenerationCycle int       `json:"generation_cycle"`
	DiversityScore  *float64  `json:"diversity_score"`
	PersonaCount    int       `json:"persona_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type DiversityTrendResponse struct {
	ScopeId *uuid.UUID            `json:"scope_id"`
	Points  []DiversityTrendPoint `json:"points"`
}

type ScopeReportResponse struct {
	ScopeId            *uuid.UUID `json:"scope_id"`
	DocumentCount      int64      `json:"document_count"`
	ContextDocuments   int64      `json:"context_documents"`
	InterviewDocuments int64      `json:"interview_documents"`
	ReadyDocuments     int64      `json:"ready_documents"`
	FailedDocuments    int64      `json:"failed_documents"`
	ChunkCount         int64      `json:"chunk_count"`
	PersonaSetCount    int64      `json:"persona_set_count"`
	PersonaCount       int64      `json:"persona_count"`
	LatestCycle        int        `json:"latest_cycle"`
	AverageDiversity   *float64   `json:"average_diversity,omitempty"`
	AverageValidation  *float64   `json:"average_validation,omitempty"`
	ValidatedPersonas  int64      `json:"validated_personas"`
}
