package service

import (
	"context"
	"testing"

	"persona-forge-be/internal/config"
	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"
	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- test doubles ---------------------------------------------------------

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

// stubEmbedder returns a fixed-direction vector per call so the gateway can
// be constructed for services that never actually embed in a test.
type stubEmbedder struct{}

func (stubEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	vec := make([]float32, 8)
	vec[len(text)%len(vec)] = 1
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: vec}}, nil
}

// cannedLLM replays scripted responses and counts invocations.
type cannedLLM struct {
	responses []string
	calls     int
}

func (c *cannedLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	idx := c.calls
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	c.calls++
	return c.responses[idx], nil
}

func (c *cannedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return c.Generate(ctx, "", opts...)
}

// fakeRetrieval serves canned availability and chunks keyed by document type.
type fakeRetrieval struct {
	availability entity.ScopeAvailability
	chunks       map[string][]*RetrievedChunk
}

func (f *fakeRetrieval) Availability(context.Context, contract.ChunkFilter) (*entity.ScopeAvailability, error) {
	a := f.availability
	return &a, nil
}

func (f *fakeRetrieval) RetrieveStage(_ context.Context, _ string, docType string, _ contract.ChunkFilter) ([]*RetrievedChunk, error) {
	return f.chunks[docType], nil
}

func (f *fakeRetrieval) RetrieveByText(_ context.Context, _ string, docType string, _ int, _ contract.ChunkFilter) ([]*RetrievedChunk, error) {
	if docType == "" {
		merged := make([]*RetrievedChunk, 0)
		for _, rcs := range f.chunks {
			merged = append(merged, rcs...)
		}
		return merged, nil
	}
	return f.chunks[docType], nil
}

// memUow is an in-memory unit of work: sets created inside a transaction land
// in the store only on Commit.
type memUow struct {
	sets    []*entity.PersonaSet
	pending []*entity.PersonaSet
	inTx    bool
	begins  int
}

func (u *memUow) Begin(context.Context) error {
	u.inTx = true
	u.begins++
	return nil
}

func (u *memUow) Commit() error {
	u.sets = append(u.sets, u.pending...)
	u.pending = nil
	u.inTx = false
	return nil
}

func (u *memUow) Rollback() error {
	u.pending = nil
	u.inTx = false
	return nil
}

func (u *memUow) ScopeRepository() contract.ScopeRepository         { return nil }
func (u *memUow) DocumentRepository() contract.DocumentRepository   { return nil }
func (u *memUow) ChunkRepository() contract.ChunkRepository         { return nil }
func (u *memUow) PersonaRepository() contract.PersonaRepository     { return nil }
func (u *memUow) PersonaSetRepository() contract.PersonaSetRepository {
	return &memPersonaSetRepo{uow: u}
}

func (u *memUow) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return u }

type memPersonaSetRepo struct {
	uow *memUow
}

func (r *memPersonaSetRepo) Create(_ context.Context, set *entity.PersonaSet) error {
	if r.uow.inTx {
		r.uow.pending = append(r.uow.pending, set)
	} else {
		r.uow.sets = append(r.uow.sets, set)
	}
	return nil
}

func (r *memPersonaSetRepo) Update(context.Context, *entity.PersonaSet) error { return nil }
func (r *memPersonaSetRepo) Delete(context.Context, uuid.UUID) error          { return nil }

func (r *memPersonaSetRepo) FindOne(context.Context, ...specification.Specification) (*entity.PersonaSet, error) {
	return nil, nil
}

func (r *memPersonaSetRepo) FindOneWithPersonas(context.Context, ...specification.Specification) (*entity.PersonaSet, error) {
	return nil, nil
}

func (r *memPersonaSetRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.PersonaSet, error) {
	return r.uow.sets, nil
}

func (r *memPersonaSetRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.uow.sets)), nil
}

func (r *memPersonaSetRepo) NextGenerationCycle(_ context.Context, scopeId *uuid.UUID) (int, error) {
	max := 0
	for _, set := range r.uow.sets {
		if !sameScope(set.ScopeId, scopeId) {
			continue
		}
		if set.GenerationCycle > max {
			max = set.GenerationCycle
		}
	}
	return max + 1, nil
}

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// --- fixtures -------------------------------------------------------------

const threePersonaJSON = `[
 {"name":"Ana","age":"34","occupation":"bookkeeper","goals":["close the books faster"]},
 {"name":"Ben","age":"51","occupation":"owner","goals":["see cash flow daily"]},
 {"name":"Cleo","age":"27","occupation":"accountant","goals":["automate reconciliation"]}
]`

func stageChunks(docType, text string) []*RetrievedChunk {
	return []*RetrievedChunk{{
		Id:           uuid.New(),
		DocumentId:   uuid.New(),
		DocumentType: docType,
		Text:         text,
		Similarity:   0.9,
		Tokens:       10,
	}}
}

func newGenerateFixture(availability entity.ScopeAvailability, chunks map[string][]*RetrievedChunk, model *cannedLLM) (ISynthesisService, *memUow, *cannedLLM) {
	if model == nil {
		model = &cannedLLM{responses: []string{threePersonaJSON}}
	}
	uow := &memUow{}
	svc := NewSynthesisService(
		uow,
		&fakeRetrieval{availability: availability, chunks: chunks},
		model,
		embedding.NewGateway(stubEmbedder{}, 4, 1),
		config.PipelineConfig{PromptSectionBudget: 6000, ExpansionWorkers: 2},
		config.ScoringConfig{RQEThreshold: 0.75, MaxIterations: 3},
		nil,
		noopLogger{},
	)
	return svc, uow, model
}

// --- tests ----------------------------------------------------------------

func TestGenerateBothModeProducesRequestedPersonas(t *testing.T) {
	svc, uow, _ := newGenerateFixture(
		entity.ScopeAvailability{IncludesContext: true, IncludesInterviews: true},
		map[string][]*RetrievedChunk{
			constant.DocumentTypeInterview: stageChunks(constant.DocumentTypeInterview, "owner interview excerpt"),
			constant.DocumentTypeContext:   stageChunks(constant.DocumentTypeContext, "market context excerpt"),
		},
		nil,
	)

	res, err := svc.Generate(context.Background(), &dto.GeneratePersonaSetRequest{PersonaCount: 3})
	require.NoError(t, err)

	assert.Equal(t, "both", res.PersonaSet.Mode)
	assert.Len(t, res.PersonaSet.Personas, 3)
	assert.Equal(t, 1, res.PersonaSet.GenerationCycle)
	assert.False(t, res.Flagged)
	require.Len(t, uow.sets, 1)
	assert.Equal(t, constant.PersonaSetStatusGenerated, uow.sets[0].Status)
}

func TestGenerateContextOnlySucceeds(t *testing.T) {
	svc, _, _ := newGenerateFixture(
		entity.ScopeAvailability{IncludesContext: true},
		map[string][]*RetrievedChunk{
			constant.DocumentTypeContext: stageChunks(constant.DocumentTypeContext, "market context excerpt"),
		},
		nil,
	)

	res, err := svc.Generate(context.Background(), &dto.GeneratePersonaSetRequest{PersonaCount: 3})
	require.NoError(t, err)
	assert.Equal(t, "context_only", res.PersonaSet.Mode)
}

func TestGenerateWithoutDocumentsFailsBeforeModelCall(t *testing.T) {
	svc, uow, model := newGenerateFixture(entity.ScopeAvailability{}, nil, nil)

	_, err := svc.Generate(context.Background(), &dto.GeneratePersonaSetRequest{PersonaCount: 3})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientInput)
	assert.Zero(t, model.calls, "model must not be called without source material")
	assert.Zero(t, uow.begins, "no transaction without source material")
	assert.Empty(t, uow.sets, "nothing may be persisted")
}

func TestGenerateRegenerationIncrementsCycle(t *testing.T) {
	scopeId := uuid.New()
	svc, uow, _ := newGenerateFixture(
		entity.ScopeAvailability{IncludesInterviews: true},
		map[string][]*RetrievedChunk{
			constant.DocumentTypeInterview: stageChunks(constant.DocumentTypeInterview, "owner interview excerpt"),
		},
		nil,
	)

	first, err := svc.Generate(context.Background(), &dto.GeneratePersonaSetRequest{PersonaCount: 2, ScopeId: &scopeId})
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), &dto.GeneratePersonaSetRequest{PersonaCount: 2, ScopeId: &scopeId})
	require.NoError(t, err)

	assert.Equal(t, 1, first.PersonaSet.GenerationCycle)
	assert.Equal(t, 2, second.PersonaSet.GenerationCycle)
	assert.Len(t, uow.sets, 2)
}
