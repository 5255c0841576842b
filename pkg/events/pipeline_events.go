package events

import (
	"time"

	"github.com/google/uuid"
)

// Event type codes for the ingestion and synthesis pipeline. Subscribers
// filter on these via the events.<type> subject hierarchy.
const (
	TypeDocumentProcessed   = "document.processed"
	TypeDocumentFailed      = "document.failed"
	TypePersonaSetGenerated = "personaset.generated"
	TypePersonaSetExpanded  = "personaset.expanded"
	TypePersonaSetScored    = "personaset.scored"
	TypePersonaSetValidated = "personaset.validated"
)

func NewDocumentProcessedEvent(documentId uuid.UUID, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentProcessed,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentFailedEvent(documentId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentFailed,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewPersonaSetGeneratedEvent(personaSetId uuid.UUID, mode string, personaCount int) Event {
	return BaseEvent{
		Type: TypePersonaSetGenerated,
		Data: map[string]interface{}{
			"persona_set_id": personaSetId.String(),
			"mode":           mode,
			"persona_count":  personaCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewPersonaSetExpandedEvent(personaSetId uuid.UUID, expanded, failed int) Event {
	return BaseEvent{
		Type: TypePersonaSetExpanded,
		Data: map[string]interface{}{
			"persona_set_id": personaSetId.String(),
			"expanded":       expanded,
			"failed":         failed,
		},
		OccurredAt: time.Now(),
	}
}

func NewPersonaSetScoredEvent(personaSetId uuid.UUID, rqeScore float64) Event {
	return BaseEvent{
		Type: TypePersonaSetScored,
		Data: map[string]interface{}{
			"persona_set_id": personaSetId.String(),
			"rqe_score":      rqeScore,
		},
		OccurredAt: time.Now(),
	}
}

func NewPersonaSetValidatedEvent(personaSetId uuid.UUID, status string, validatedCount int) Event {
	return BaseEvent{
		Type: TypePersonaSetValidated,
		Data: map[string]interface{}{
			"persona_set_id":  personaSetId.String(),
			"status":          status,
			"validated_count": validatedCount,
		},
		OccurredAt: time.Now(),
	}
}
