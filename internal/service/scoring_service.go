package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"
	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/events"
	pktNats "persona-forge-be/pkg/nats"

	"github.com/google/uuid"
)

type IScoringService interface {
	// ScorePersonaSet computes the diversity (RQE) metrics of a set and
	// persists them together with the persona embeddings they derive from.
	ScorePersonaSet(ctx context.Context, id uuid.UUID) (*dto.ScorePersonaSetResponse, error)
}

type scoringService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        *embedding.Gateway
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewScoringService(
	uowFactory unitofwork.RepositoryFactory,
	gateway *embedding.Gateway,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IScoringService {
	return &scoringService{
		uowFactory:     uowFactory,
		gateway:        gateway,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *scoringService) ScorePersonaSet(ctx context.Context, id uuid.UUID) (*dto.ScorePersonaSetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.PersonaSetRepository().FindOneWithPersonas(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: persona set %s", apperrors.ErrNotFound, id)
	}
	if len(set.Personas) < 2 {
		return nil, fmt.Errorf("%w: diversity needs at least 2 personas, set has %d", apperrors.ErrInsufficientData, len(set.Personas))
	}

	texts := make([]string, len(set.Personas))
	names := make([]string, len(set.Personas))
	for i := range set.Personas {
		texts[i] = RenderPersonaText(&set.Personas[i])
		names[i] = set.Personas[i].Name
	}

	vectors, err := s.gateway.EmbedBatch(ctx, texts, embedding.TaskTypeDocument)
	if err != nil {
		if errors.Is(err, embedding.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrEmbeddingUnavailable, err)
		}
		return nil, err
	}

	metrics, err := ComputeRQEMetrics(names, vectors)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	for i := range set.Personas {
		persona := &set.Personas[i]
		persona.Embedding = vectors[i]
		persona.UpdatedAt = &now
		if err := uow.PersonaRepository().Update(ctx, persona); err != nil {
			return nil, err
		}
	}

	score := metrics.RQEScore
	set.DiversityScore = &score
	set.RQEMetrics = metrics
	set.Status = advanceStatus(set.Status, constant.PersonaSetStatusScored)
	set.UpdatedAt = &now
	if err := uow.PersonaSetRepository().Update(ctx, set); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewPersonaSetScoredEvent(set.Id, metrics.RQEScore)
		if err := s.eventPublisher.Publish(ctx, withScopePayload(evt, set.ScopeId)); err != nil {
			s.logger.Warn("ScoringService", "Failed to publish scored event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("ScoringService", "Persona set scored", map[string]interface{}{
		"persona_set_id": set.Id,
		"rqe_score":      metrics.RQEScore,
		"num_personas":   metrics.NumPersonas,
	})

	return &dto.ScorePersonaSetResponse{
		Id:             set.Id,
		DiversityScore: metrics.RQEScore,
		Metrics:        *metrics,
		Status:         set.Status,
	}, nil
}

// ComputeRQEMetrics derives the diversity metrics from persona embeddings.
// RQE is 1 minus the mean pairwise cosine similarity, clamped to [0, 1]:
// the more similar the personas, the lower the score.
func ComputeRQEMetrics(names []string, vectors [][]float32) (*entity.RQEMetrics, error) {
	n := len(vectors)
	if n < 2 {
		return nil, fmt.Errorf("%w: diversity needs at least 2 personas, got %d", apperrors.ErrInsufficientData, n)
	}

	type pair struct {
		a, b int
		sim  float64
	}
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{a: i, b: j, sim: cosineSimilarity32(vectors[i], vectors[j])})
		}
	}

	var sum float64
	minSim := pairs[0].sim
	maxSim := pairs[0].sim
	for _, p := range pairs {
		sum += p.sim
		if p.sim < minSim {
			minSim = p.sim
		}
		if p.sim > maxSim {
			maxSim = p.sim
		}
	}
	avg := sum / float64(len(pairs))

	var variance float64
	for _, p := range pairs {
		d := p.sim - avg
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(pairs)))

	rqe := 1 - avg
	if rqe < 0 {
		rqe = 0
	}
	if rqe > 1 {
		rqe = 1
	}

	// Surface the most redundant pairs so regeneration can steer away from
	// them. Only pairs above the cutoff count as redundant.
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].sim > pairs[j].sim })
	var similarPairs []entity.SimilarPair
	for _, p := range pairs {
		if p.sim < constant.SimilarPairCutoff || len(similarPairs) == 3 {
			break
		}
		similarPairs = append(similarPairs, entity.SimilarPair{
			NameA:      names[p.a],
			NameB:      names[p.b],
			Similarity: p.sim,
		})
	}

	return &entity.RQEMetrics{
		RQEScore:          rqe,
		AverageSimilarity: avg,
		MinSimilarity:     minSim,
		MaxSimilarity:     maxSim,
		StdSimilarity:     std,
		NumPersonas:       n,
		MostSimilarPairs:  similarPairs,
	}, nil
}

// RenderPersonaText builds the normalized textual representation a persona
// is embedded from. Field order is fixed so identical personas always embed
// identically.
func RenderPersonaText(p *entity.Persona) string {
	var b strings.Builder
	for _, field := range constant.PersonaRenderFields {
		value, ok := p.StructuredFields[field]
		if !ok {
			if field == "name" && p.Name != "" {
				b.WriteString("name: " + p.Name + "\n")
			}
			continue
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(renderFieldValue(value))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderFieldValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cosineSimilarity32(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// advanceStatus moves a set forward through its lifecycle. Re-running an
// earlier stage refreshes its outputs without regressing the status.
func advanceStatus(current, next string) string {
	order := map[string]int{
		constant.PersonaSetStatusGenerated: 0,
		constant.PersonaSetStatusExpanded:  1,
		constant.PersonaSetStatusScored:    2,
		constant.PersonaSetStatusValidated: 3,
	}
	if order[next] > order[current] {
		return next
	}
	return current
}

// withScopePayload annotates an event with the scope so the realtime feed
// can route it to scope subscribers.
func withScopePayload(evt events.Event, scopeId *uuid.UUID) events.Event {
	data := evt.Payload()
	if scopeId != nil {
		data["scope_id"] = scopeId.String()
	}
	return events.BaseEvent{
		Type:       evt.EventType(),
		Data:       data,
		OccurredAt: evt.Timestamp(),
	}
}
