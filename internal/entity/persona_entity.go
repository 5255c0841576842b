package entity

import (
	"time"

	"github.com/google/uuid"
)

type PersonaSet struct {
	Id                uuid.UUID
	ScopeId           *uuid.UUID
	GenerationCycle   int
	Mode              string
	Status            string
	RequestedCount    int
	DiversityScore    *float64
	RQEMetrics        *RQEMetrics
	ValidationSummary *ValidationSummary
	GenerationConfig  map[string]interface{}
	Personas          []Persona
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

type Persona struct {
	Id               uuid.UUID
	PersonaSetId     uuid.UUID
	Name             string
	StructuredFields map[string]interface{}
	Embedding        []float32
	ValidationScore  *float64
	ValidationStatus string
	ValidationDetail *PersonaValidation
	ExpansionError   *string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// RQEMetrics is the diversity measurement for one generation cycle. RQEScore
// is 1 minus the mean off-diagonal pairwise similarity, clamped to [0, 1].
type RQEMetrics struct {
	RQEScore          float64       `json:"rqe_score"`
	AverageSimilarity float64       `json:"average_similarity"`
	MinSimilarity     float64       `json:"min_similarity"`
	MaxSimilarity     float64       `json:"max_similarity"`
	StdSimilarity     float64       `json:"std_similarity"`
	NumPersonas       int           `json:"num_personas"`
	MostSimilarPairs  []SimilarPair `json:"most_similar_pairs,omitempty"`
}

// SimilarPair identifies two personas whose similarity exceeded the hint
// cutoff; iterative regeneration turns these into diversity hints.
type SimilarPair struct {
	NameA      string  `json:"name_a"`
	NameB      string  `json:"name_b"`
	Similarity float64 `json:"similarity"`
}

// PersonaValidation summarizes one persona's similarity to real interview
// chunks. Simulated marks scores produced with no interview material at all;
// they must stay visibly distinct from measured ones.
type PersonaValidation struct {
	Average            float64            `json:"average"`
	Max                float64            `json:"max"`
	Min                float64            `json:"min"`
	NumMatches         int                `json:"num_matches"`
	Status             string             `json:"status"`
	Simulated          bool               `json:"simulated"`
	AttributesGrounded int                `json:"attributes_grounded"`
	AttributeScores    map[string]float64 `json:"attribute_scores,omitempty"`
}

type ValidationSummary struct {
	OverallAverage float64 `json:"overall_average"`
	ValidatedCount int     `json:"validated_count"`
	NumPersonas    int     `json:"num_personas"`
	Simulated      bool    `json:"simulated"`
}
