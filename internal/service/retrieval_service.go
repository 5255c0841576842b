package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/memory"
	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/textsplit"

	"github.com/google/uuid"
)

// RetrievedChunk is a ranked retrieval result with everything prompt
// assembly needs: the text, its type label and a token estimate.
type RetrievedChunk struct {
	Id           uuid.UUID
	DocumentId   uuid.UUID
	DocumentType string
	ChunkIndex   int
	Text         string
	Similarity   float64
	Tokens       int
}

type IRetrievalService interface {
	// Availability reports which document types have retrievable chunks
	// inside the filter. It decides the synthesis mode.
	Availability(ctx context.Context, filter contract.ChunkFilter) (*entity.ScopeAvailability, error)
	// RetrieveStage runs the fixed query set of a stage against one document
	// type and returns merged, deduplicated results ranked by similarity.
	RetrieveStage(ctx context.Context, stage string, docType string, filter contract.ChunkFilter) ([]*RetrievedChunk, error)
	// RetrieveByText runs a single free-form query, used by expansion and
	// validation where the query derives from a persona.
	RetrieveByText(ctx context.Context, queryText string, docType string, topK int, filter contract.ChunkFilter) ([]*RetrievedChunk, error)
}

type retrievalService struct {
	chunkRepo  contract.ChunkRepository
	gateway    *embedding.Gateway
	queryCache *memory.QueryEmbeddingCache
	logger     logger.ILogger
}

func NewRetrievalService(
	chunkRepo contract.ChunkRepository,
	gateway *embedding.Gateway,
	queryCache *memory.QueryEmbeddingCache,
	log logger.ILogger,
) IRetrievalService {
	return &retrievalService{
		chunkRepo:  chunkRepo,
		gateway:    gateway,
		queryCache: queryCache,
		logger:     log,
	}
}

func (s *retrievalService) Availability(ctx context.Context, filter contract.ChunkFilter) (*entity.ScopeAvailability, error) {
	contextFilter := filter
	contextFilter.DocumentType = constant.DocumentTypeContext
	contextCount, err := s.chunkRepo.CountForFilter(ctx, contextFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrVectorIndex, err)
	}

	interviewFilter := filter
	interviewFilter.DocumentType = constant.DocumentTypeInterview
	interviewCount, err := s.chunkRepo.CountForFilter(ctx, interviewFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrVectorIndex, err)
	}

	return &entity.ScopeAvailability{
		IncludesContext:    contextCount > 0,
		IncludesInterviews: interviewCount > 0,
	}, nil
}

func (s *retrievalService) RetrieveStage(ctx context.Context, stage string, docType string, filter contract.ChunkFilter) ([]*RetrievedChunk, error) {
	queries := stageQueries(docType)
	topK := stageTopK(stage)

	merged := make(map[uuid.UUID]*RetrievedChunk)
	for _, query := range queries {
		results, err := s.search(ctx, query, docType, topK, filter)
		if err != nil {
			return nil, err
		}
		for _, rc := range results {
			if existing, ok := merged[rc.Id]; ok {
				if rc.Similarity > existing.Similarity {
					merged[rc.Id] = rc
				}
				continue
			}
			merged[rc.Id] = rc
		}
	}

	return rankChunks(merged), nil
}

func (s *retrievalService) RetrieveByText(ctx context.Context, queryText string, docType string, topK int, filter contract.ChunkFilter) ([]*RetrievedChunk, error) {
	if topK <= 0 {
		topK = constant.ValidationTopK
	}
	results, err := s.search(ctx, queryText, docType, topK, filter)
	if err != nil {
		return nil, err
	}
	merged := make(map[uuid.UUID]*RetrievedChunk, len(results))
	for _, rc := range results {
		merged[rc.Id] = rc
	}
	return rankChunks(merged), nil
}

func (s *retrievalService) search(ctx context.Context, query string, docType string, topK int, filter contract.ChunkFilter) ([]*RetrievedChunk, error) {
	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	searchFilter := filter
	searchFilter.DocumentType = docType

	scored, err := s.chunkRepo.SearchSimilar(ctx, vector, topK, searchFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrVectorIndex, err)
	}

	results := make([]*RetrievedChunk, 0, len(scored))
	for _, sc := range scored {
		results = append(results, &RetrievedChunk{
			Id:           sc.Chunk.Id,
			DocumentId:   sc.Chunk.DocumentId,
			DocumentType: sc.Chunk.DocumentType,
			ChunkIndex:   sc.Chunk.ChunkIndex,
			Text:         sc.Chunk.Text,
			Similarity:   sc.Similarity,
			Tokens:       textsplit.EstimateTokens(sc.Chunk.Text),
		})
	}
	return results, nil
}

// embedQuery embeds a query string, memoizing through the query cache since
// stage queries are fixed strings repeated on every request.
func (s *retrievalService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if cached, ok := s.queryCache.Get(embedding.TaskTypeQuery, query); ok {
		return cached, nil
	}

	vector, err := s.gateway.EmbedOne(ctx, query, embedding.TaskTypeQuery)
	if err != nil {
		if errors.Is(err, embedding.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrEmbeddingUnavailable, err)
		}
		return nil, err
	}

	s.queryCache.Save(embedding.TaskTypeQuery, query, vector)
	return vector, nil
}

func stageQueries(docType string) []string {
	if docType == constant.DocumentTypeInterview {
		return constant.InterviewStageQueries
	}
	return constant.ContextStageQueries
}

func stageTopK(stage string) int {
	switch stage {
	case constant.StageExpansion:
		return constant.ExpansionTopK
	case constant.StageValidation:
		return constant.ValidationTopK
	default:
		return constant.GenerationTopK
	}
}

func rankChunks(merged map[uuid.UUID]*RetrievedChunk) []*RetrievedChunk {
	ranked := make([]*RetrievedChunk, 0, len(merged))
	for _, rc := range merged {
		ranked = append(ranked, rc)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		if ranked[i].DocumentId != ranked[j].DocumentId {
			return ranked[i].DocumentId.String() < ranked[j].DocumentId.String()
		}
		return ranked[i].ChunkIndex < ranked[j].ChunkIndex
	})
	return ranked
}

// TrimToTokenBudget keeps the highest-ranked whole chunks that fit the
// budget. Chunks are never cut mid-text; an oversized chunk is skipped so a
// lower-ranked one can still fill the remaining budget.
func TrimToTokenBudget(chunks []*RetrievedChunk, budget int) []*RetrievedChunk {
	if budget <= 0 {
		return nil
	}
	kept := make([]*RetrievedChunk, 0, len(chunks))
	total := 0
	for _, rc := range chunks {
		if total+rc.Tokens > budget {
			continue
		}
		kept = append(kept, rc)
		total += rc.Tokens
	}
	return kept
}

// ChunkTexts joins chunk texts into one prompt section.
func ChunkTexts(chunks []*RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, rc := range chunks {
		parts = append(parts, rc.Text)
	}
	return strings.Join(parts, "\n\n")
}
