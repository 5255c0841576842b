package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"persona-forge-be/internal/config"
	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"
	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/events"
	pktNats "persona-forge-be/pkg/nats"

	"github.com/google/uuid"
)

type IValidationService interface {
	// Validate grounds every persona of a set against the interview corpus the
	// set was generated from. Without interview chunks the run degrades to
	// simulated scores, which are always labeled as such.
	Validate(ctx context.Context, id uuid.UUID) (*dto.ValidatePersonaSetResponse, error)
}

type validationService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        *embedding.Gateway
	scoringCfg     config.ScoringConfig
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewValidationService(
	uowFactory unitofwork.RepositoryFactory,
	gateway *embedding.Gateway,
	scoringCfg config.ScoringConfig,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IValidationService {
	return &validationService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		scoringCfg:     scoringCfg,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// simulatedScore is the neutral value assigned when no interview material
// exists to measure against.
const simulatedScore = 0.5

func (s *validationService) Validate(ctx context.Context, id uuid.UUID) (*dto.ValidatePersonaSetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.PersonaSetRepository().FindOneWithPersonas(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: persona set %s", apperrors.ErrNotFound, id)
	}
	if len(set.Personas) == 0 {
		return nil, fmt.Errorf("%w: persona set %s has no personas", apperrors.ErrInsufficientData, id)
	}

	// Validation always runs against the interview slice of the corpus the set
	// was generated from.
	interviewFilter := chunkFilterForSet(set)
	interviewFilter.DocumentType = constant.DocumentTypeInterview

	interviewCount, err := uow.ChunkRepository().CountForFilter(ctx, interviewFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrVectorIndex, err)
	}

	simulated := interviewCount == 0
	now := time.Now()

	if simulated {
		for i := range set.Personas {
			s.applySimulated(&set.Personas[i], now)
		}
	} else {
		for i := range set.Personas {
			if err := s.validatePersona(ctx, uow, &set.Personas[i], interviewFilter, now); err != nil {
				return nil, err
			}
		}
	}

	summary := summarize(set.Personas, simulated)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	for i := range set.Personas {
		if err := uow.PersonaRepository().Update(ctx, &set.Personas[i]); err != nil {
			return nil, err
		}
	}

	set.ValidationSummary = summary
	set.Status = advanceStatus(set.Status, constant.PersonaSetStatusValidated)
	set.UpdatedAt = &now
	if err := uow.PersonaSetRepository().Update(ctx, set); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewPersonaSetValidatedEvent(set.Id, set.Status, summary.ValidatedCount)
		if err := s.eventPublisher.Publish(ctx, withScopePayload(evt, set.ScopeId)); err != nil {
			s.logger.Warn("ValidationService", "Failed to publish validated event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("ValidationService", "Persona set validated", map[string]interface{}{
		"persona_set_id":  set.Id,
		"validated_count": summary.ValidatedCount,
		"num_personas":    summary.NumPersonas,
		"simulated":       simulated,
	})

	personas := make([]dto.PersonaDTO, len(set.Personas))
	for i := range set.Personas {
		personas[i] = toPersonaDTO(&set.Personas[i])
	}

	return &dto.ValidatePersonaSetResponse{
		Id:       set.Id,
		Summary:  *summary,
		Personas: personas,
		Status:   set.Status,
	}, nil
}

// validatePersona measures one persona against its nearest interview chunks.
// The score is the mean cosine similarity between the persona embedding and
// the top matches; attribute-level grounding is measured against the same
// match set.
func (s *validationService) validatePersona(ctx context.Context, uow unitofwork.UnitOfWork, persona *entity.Persona, filter contract.ChunkFilter, now time.Time) error {
	vector := persona.Embedding
	if vector == nil {
		embedded, err := s.gateway.EmbedOne(ctx, RenderPersonaText(persona), embedding.TaskTypeDocument)
		if err != nil {
			if errors.Is(err, embedding.ErrUnavailable) {
				return fmt.Errorf("%w: %v", apperrors.ErrEmbeddingUnavailable, err)
			}
			return err
		}
		vector = embedded
		persona.Embedding = embedded
	}

	scored, err := uow.ChunkRepository().SearchSimilar(ctx, vector, constant.ValidationTopK, filter)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrVectorIndex, err)
	}

	detail := &entity.PersonaValidation{NumMatches: len(scored)}
	if len(scored) == 0 {
		detail.Status = constant.ValidationStatusPending
	} else {
		var sum float64
		detail.Min = scored[0].Similarity
		detail.Max = scored[0].Similarity
		for _, sc := range scored {
			sum += sc.Similarity
			if sc.Similarity < detail.Min {
				detail.Min = sc.Similarity
			}
			if sc.Similarity > detail.Max {
				detail.Max = sc.Similarity
			}
		}
		detail.Average = sum / float64(len(scored))

		if detail.Average >= s.scoringCfg.ValidationThreshold {
			detail.Status = constant.ValidationStatusValidated
		} else {
			detail.Status = constant.ValidationStatusPending
		}

		scores, grounded, err := s.scoreAttributes(ctx, persona, scored)
		if err != nil {
			return err
		}
		detail.AttributeScores = scores
		detail.AttributesGrounded = grounded
	}

	average := detail.Average
	persona.ValidationScore = &average
	persona.ValidationStatus = detail.Status
	persona.ValidationDetail = detail
	persona.UpdatedAt = &now
	return nil
}

// scoreAttributes measures how well each individual field is grounded: the
// field text is embedded alone and compared against the persona's match set.
func (s *validationService) scoreAttributes(ctx context.Context, persona *entity.Persona, scored []*contract.ScoredChunk) (map[string]float64, int, error) {
	fields := make([]string, 0, len(constant.PersonaRenderFields))
	texts := make([]string, 0, len(constant.PersonaRenderFields))
	for _, field := range constant.PersonaRenderFields {
		if field == "name" {
			continue
		}
		value, ok := persona.StructuredFields[field]
		if !ok || value == nil {
			continue
		}
		fields = append(fields, field)
		texts = append(texts, field+": "+renderFieldValue(value))
	}
	if len(fields) == 0 {
		return nil, 0, nil
	}

	vectors, err := s.gateway.EmbedBatch(ctx, texts, embedding.TaskTypeDocument)
	if err != nil {
		if errors.Is(err, embedding.ErrUnavailable) {
			return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrEmbeddingUnavailable, err)
		}
		return nil, 0, err
	}

	scores := make(map[string]float64, len(fields))
	grounded := 0
	for i, field := range fields {
		best := 0.0
		for _, sc := range scored {
			if sim := cosineSimilarity32(vectors[i], sc.Chunk.Embedding); sim > best {
				best = sim
			}
		}
		scores[field] = best
		if best >= s.scoringCfg.AttributeThreshold {
			grounded++
		}
	}
	return scores, grounded, nil
}

func (s *validationService) applySimulated(persona *entity.Persona, now time.Time) {
	score := simulatedScore
	persona.ValidationScore = &score
	persona.ValidationStatus = constant.ValidationStatusSimulated
	persona.ValidationDetail = &entity.PersonaValidation{
		Average:   simulatedScore,
		Max:       simulatedScore,
		Min:       simulatedScore,
		Status:    constant.ValidationStatusSimulated,
		Simulated: true,
	}
	persona.UpdatedAt = &now
}

func summarize(personas []entity.Persona, simulated bool) *entity.ValidationSummary {
	var sum float64
	validated := 0
	for i := range personas {
		if personas[i].ValidationScore != nil {
			sum += *personas[i].ValidationScore
		}
		if personas[i].ValidationStatus == constant.ValidationStatusValidated {
			validated++
		}
	}
	return &entity.ValidationSummary{
		OverallAverage: sum / float64(len(personas)),
		ValidatedCount: validated,
		NumPersonas:    len(personas),
		Simulated:      simulated,
	}
}
