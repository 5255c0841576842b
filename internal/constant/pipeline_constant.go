package constant

// Document types accepted by the ingestion pipeline.
const (
	DocumentTypeContext   = "context"
	DocumentTypeInterview = "interview"
)

// Document processing lifecycle.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)

// PersonaSet lifecycle: each stage transition is applied as a whole.
const (
	PersonaSetStatusGenerated = "generated"
	PersonaSetStatusExpanded  = "expanded"
	PersonaSetStatusScored    = "scored"
	PersonaSetStatusValidated = "validated"
)

// Per-persona validation outcomes. "simulated" marks scores produced without
// any real interview chunks; it must never be confused with measured scores.
const (
	ValidationStatusValidated = "validated"
	ValidationStatusPending   = "pending"
	ValidationStatusSimulated = "simulated"
)

// Retrieval stages. Each stage carries its own query set and result budget.
// Diversity scoring has no stage: it reads the personas' own embeddings.
const (
	StageGeneration = "generation"
	StageExpansion  = "expansion"
	StageValidation = "validation"
)

// Result counts per stage, per query.
const (
	GenerationTopK = 10
	ExpansionTopK  = 8
	ValidationTopK = 5
	CompletionTopK = 5
)

// Semantic queries biased toward each document type during generation.
// Fixed strings: their query embeddings are safe to cache.
var (
	InterviewStageQueries = []string{
		"user interviews, user research, interview transcripts",
		"user feedback, user needs, pain points",
	}
	ContextStageQueries = []string{
		"research context, background information, market research",
		"user behavior, demographics, target audience",
	}
)

// Pairs with similarity above this cutoff feed the diversity hints of
// iterative regeneration.
const SimilarPairCutoff = 0.70

// Output formats accepted by the synthesizer. "json" is the default and the
// only machine-parsed one; the rest shape presentation only.
var OutputFormats = map[string]bool{
	"json":        true,
	"profile":     true,
	"chat":        true,
	"proto":       true,
	"adhoc":       true,
	"engaging":    true,
	"goal_based":  true,
	"role_based":  true,
	"interactive": true,
}

const DefaultOutputFormat = "json"

// Identity fields preserved verbatim during expansion. Expansion adds depth
// to the expandable fields, never rewrites who the persona is.
var DemographicFields = []string{"name", "age", "gender", "location", "occupation"}

var ExpandableFields = []string{
	"background", "goals", "frustrations", "behaviors",
	"motivations", "tech_comfort", "quotes",
}

// Field order for the normalized text rendering used by the diversity and
// validation scorers. Stable order keeps persona embeddings deterministic.
var PersonaRenderFields = []string{
	"name", "age", "gender", "location", "occupation", "background",
	"goals", "frustrations", "behaviors", "motivations", "tech_comfort",
}
