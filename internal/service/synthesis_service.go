package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
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
	"persona-forge-be/pkg/llm"
	pktNats "persona-forge-be/pkg/nats"
	"persona-forge-be/pkg/prompt"

	"github.com/google/uuid"
)

type ISynthesisService interface {
	// Generate runs one synthesis request end to end: classify the mode,
	// retrieve source material, call the model once, parse, and persist the
	// whole set atomically.
	Generate(ctx context.Context, req *dto.GeneratePersonaSetRequest) (*dto.GeneratePersonaSetResponse, error)
	// Expand deepens each persona of a set with an independent model call.
	// One persona failing does not roll back its siblings.
	Expand(ctx context.Context, req *dto.ExpandPersonaSetRequest) (*dto.ExpandPersonaSetResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.PersonaSetResponse, error)
	List(ctx context.Context, req *dto.ListPersonaSetsRequest) (*dto.ListPersonaSetsResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type synthesisService struct {
	uowFactory       unitofwork.RepositoryFactory
	retrievalService IRetrievalService
	llmProvider      llm.LLMProvider
	gateway          *embedding.Gateway
	pipelineCfg      config.PipelineConfig
	scoringCfg       config.ScoringConfig
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewSynthesisService(
	uowFactory unitofwork.RepositoryFactory,
	retrievalService IRetrievalService,
	llmProvider llm.LLMProvider,
	gateway *embedding.Gateway,
	pipelineCfg config.PipelineConfig,
	scoringCfg config.ScoringConfig,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISynthesisService {
	return &synthesisService{
		uowFactory:       uowFactory,
		retrievalService: retrievalService,
		llmProvider:      llmProvider,
		gateway:          gateway,
		pipelineCfg:      pipelineCfg,
		scoringCfg:       scoringCfg,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// candidate is one parsed model response together with the diversity
// measurement the iterative loop took of it.
type candidate struct {
	personas []map[string]interface{}
	vectors  [][]float32
	metrics  *entity.RQEMetrics
}

func (s *synthesisService) Generate(ctx context.Context, req *dto.GeneratePersonaSetRequest) (*dto.GeneratePersonaSetResponse, error) {
	filter := contract.ChunkFilter{
		DocumentIDs: req.DocumentIds,
		ScopeID:     req.ScopeId,
	}

	availability, err := s.retrievalService.Availability(ctx, filter)
	if err != nil {
		return nil, err
	}
	if !availability.IncludesContext && !availability.IncludesInterviews {
		return nil, fmt.Errorf("%w: no context or interview chunks match the request filter", apperrors.ErrInsufficientInput)
	}

	var interviewText, contextText string
	if availability.IncludesInterviews {
		chunks, err := s.retrievalService.RetrieveStage(ctx, constant.StageGeneration, constant.DocumentTypeInterview, filter)
		if err != nil {
			return nil, err
		}
		interviewText = ChunkTexts(TrimToTokenBudget(chunks, s.pipelineCfg.PromptSectionBudget))
	}
	if availability.IncludesContext {
		chunks, err := s.retrievalService.RetrieveStage(ctx, constant.StageGeneration, constant.DocumentTypeContext, filter)
		if err != nil {
			return nil, err
		}
		contextText = ChunkTexts(TrimToTokenBudget(chunks, s.pipelineCfg.PromptSectionBudget))
	}

	// The mode is decided by what retrieval actually returned, not by raw
	// counts: a type whose chunks all fell below the budget contributes
	// nothing to the prompt.
	mode := prompt.ClassifyMode(contextText != "", interviewText != "")
	if mode == prompt.ModeNoDocs {
		return nil, fmt.Errorf("%w: retrieval returned no usable chunks", apperrors.ErrInsufficientInput)
	}

	outputFormat := req.OutputFormat
	if outputFormat == "" {
		outputFormat = constant.DefaultOutputFormat
	}

	input := prompt.GenerationInput{
		PersonaCount:      req.PersonaCount,
		ContextText:       contextText,
		InterviewText:     interviewText,
		UserContext:       req.UserContext,
		Topic:             req.Topic,
		Methodology:       req.Methodology,
		OutputFormat:      outputFormat,
		EthicalGuardrails: req.EthicalGuardrails,
	}

	best, iterations, err := s.generateCandidate(ctx, mode, input, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	setId := uuid.New()
	personas := make([]entity.Persona, len(best.personas))
	for i, fields := range best.personas {
		personas[i] = entity.Persona{
			Id:               uuid.New(),
			PersonaSetId:     setId,
			Name:             personaName(fields),
			StructuredFields: fields,
			CreatedAt:        now,
		}
		if best.vectors != nil {
			personas[i].Embedding = best.vectors[i]
		}
	}

	flagged := len(personas) < req.PersonaCount
	generationConfig := map[string]interface{}{
		"requested_count":    req.PersonaCount,
		"output_format":      outputFormat,
		"ethical_guardrails": req.EthicalGuardrails,
		"iterations":         iterations,
		"flagged":            flagged,
	}
	if req.Topic != "" {
		generationConfig["topic"] = req.Topic
	}
	if req.UserContext != "" {
		generationConfig["user_context"] = req.UserContext
	}
	if req.Methodology != "" {
		generationConfig["methodology"] = req.Methodology
	}
	if len(req.DocumentIds) > 0 {
		ids := make([]string, len(req.DocumentIds))
		for i, id := range req.DocumentIds {
			ids[i] = id.String()
		}
		generationConfig["document_ids"] = ids
	}

	set := entity.PersonaSet{
		Id:               setId,
		ScopeId:          req.ScopeId,
		Mode:             mode.String(),
		Status:           constant.PersonaSetStatusGenerated,
		RequestedCount:   req.PersonaCount,
		GenerationConfig: generationConfig,
		Personas:         personas,
		CreatedAt:        now,
	}
	if best.metrics != nil {
		score := best.metrics.RQEScore
		set.DiversityScore = &score
		set.RQEMetrics = best.metrics
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	cycle, err := uow.PersonaSetRepository().NextGenerationCycle(ctx, req.ScopeId)
	if err != nil {
		return nil, err
	}
	set.GenerationCycle = cycle

	if err := uow.PersonaSetRepository().Create(ctx, &set); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewPersonaSetGeneratedEvent(set.Id, set.Mode, len(set.Personas))
		if err := s.eventPublisher.Publish(ctx, withScopePayload(evt, set.ScopeId)); err != nil {
			s.logger.Warn("SynthesisService", "Failed to publish generated event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("SynthesisService", "Persona set generated", map[string]interface{}{
		"persona_set_id":   set.Id,
		"mode":             set.Mode,
		"generation_cycle": set.GenerationCycle,
		"personas":         len(set.Personas),
		"iterations":       iterations,
	})

	res := &dto.GeneratePersonaSetResponse{
		PersonaSet: *toPersonaSetResponse(&set),
		Flagged:    flagged,
	}
	if flagged {
		res.Warning = fmt.Sprintf("model returned %d of %d requested personas", len(personas), req.PersonaCount)
	}
	return res, nil
}

// generateCandidate invokes the model, optionally looping with diversity
// hints until the RQE score clears the threshold. The best-scoring candidate
// wins; a mid-loop failure keeps the best result seen so far.
func (s *synthesisService) generateCandidate(ctx context.Context, mode prompt.Mode, input prompt.GenerationInput, req *dto.GeneratePersonaSetRequest) (*candidate, int, error) {
	first, err := s.invokeAndParse(ctx, mode, input)
	if err != nil {
		return nil, 0, err
	}

	if !req.Iterative || len(first.personas) < 2 {
		return first, 1, nil
	}

	threshold := s.scoringCfg.RQEThreshold
	if req.RQEThreshold != nil {
		threshold = *req.RQEThreshold
	}
	maxIterations := s.scoringCfg.MaxIterations
	if req.MaxIterations != nil {
		maxIterations = *req.MaxIterations
	}

	best := first
	if err := s.measure(ctx, best); err != nil {
		return nil, 0, err
	}

	iterations := 1
	for iterations < maxIterations && best.metrics.RQEScore < threshold {
		input.DiversityHints = diversityHints(best.metrics.MostSimilarPairs)

		next, err := s.invokeAndParse(ctx, mode, input)
		if err != nil {
			// A later iteration failing does not invalidate what we already
			// have; keep the best candidate so far.
			s.logger.Warn("SynthesisService", "Regeneration iteration failed, keeping best candidate", map[string]interface{}{
				"iteration": iterations + 1, "error": err.Error(),
			})
			break
		}
		iterations++

		if len(next.personas) < 2 {
			continue
		}
		if err := s.measure(ctx, next); err != nil {
			return nil, 0, err
		}
		if next.metrics.RQEScore > best.metrics.RQEScore {
			best = next
		}
	}

	return best, iterations, nil
}

func (s *synthesisService) invokeAndParse(ctx context.Context, mode prompt.Mode, input prompt.GenerationInput) (*candidate, error) {
	promptText := prompt.NewGenerationBuilder(mode, input).Build()

	response, err := s.llmProvider.Generate(ctx, promptText, llm.WithTemperature(0.7))
	if err != nil {
		return nil, fmt.Errorf("persona generation call: %w", err)
	}

	personas, err := parsePersonaArray(response)
	if err != nil {
		return nil, err
	}
	return &candidate{personas: personas}, nil
}

// measure embeds the candidate's personas and computes its RQE metrics. The
// vectors are kept so the winning candidate persists them without re-embedding.
func (s *synthesisService) measure(ctx context.Context, c *candidate) error {
	texts := make([]string, len(c.personas))
	names := make([]string, len(c.personas))
	for i, fields := range c.personas {
		p := entity.Persona{Name: personaName(fields), StructuredFields: fields}
		texts[i] = RenderPersonaText(&p)
		names[i] = p.Name
	}

	vectors, err := s.gateway.EmbedBatch(ctx, texts, embedding.TaskTypeDocument)
	if err != nil {
		if errors.Is(err, embedding.ErrUnavailable) {
			return fmt.Errorf("%w: %v", apperrors.ErrEmbeddingUnavailable, err)
		}
		return err
	}

	metrics, err := ComputeRQEMetrics(names, vectors)
	if err != nil {
		return err
	}

	c.vectors = vectors
	c.metrics = metrics
	return nil
}

func diversityHints(pairs []entity.SimilarPair) []string {
	hints := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		hints = append(hints, fmt.Sprintf(
			"%s and %s were %.0f%% similar; give them clearly different goals, behaviors and backgrounds",
			pair.NameA, pair.NameB, pair.Similarity*100,
		))
	}
	return hints
}

func (s *synthesisService) Expand(ctx context.Context, req *dto.ExpandPersonaSetRequest) (*dto.ExpandPersonaSetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.PersonaSetRepository().FindOneWithPersonas(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: persona set %s", apperrors.ErrNotFound, req.Id)
	}
	if len(set.Personas) == 0 {
		return nil, fmt.Errorf("%w: persona set %s has no personas", apperrors.ErrInsufficientData, req.Id)
	}

	expandable := req.Fields
	if len(expandable) == 0 {
		expandable = constant.ExpandableFields
	}
	filter := chunkFilterForSet(set)

	workers := s.pipelineCfg.ExpansionWorkers
	if workers < 1 {
		workers = 1
	}

	// Personas expand independently: each worker runs its own retrieval and
	// model call, and commits or records failure for its persona alone.
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	outcomes := make([]error, len(set.Personas))

	for i := range set.Personas {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[idx] = s.expandPersona(ctx, &set.Personas[idx], expandable, filter)
		}(i)
	}
	wg.Wait()

	expanded, failed := 0, 0
	for _, err := range outcomes {
		if err != nil {
			failed++
		} else {
			expanded++
		}
	}

	now := time.Now()
	if expanded > 0 {
		set.Status = advanceStatus(set.Status, constant.PersonaSetStatusExpanded)
	}
	set.UpdatedAt = &now
	if err := uow.PersonaSetRepository().Update(ctx, set); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewPersonaSetExpandedEvent(set.Id, expanded, failed)
		if err := s.eventPublisher.Publish(ctx, withScopePayload(evt, set.ScopeId)); err != nil {
			s.logger.Warn("SynthesisService", "Failed to publish expanded event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("SynthesisService", "Persona set expanded", map[string]interface{}{
		"persona_set_id": set.Id,
		"expanded":       expanded,
		"failed":         failed,
	})

	return &dto.ExpandPersonaSetResponse{
		Id:       set.Id,
		Expanded: expanded,
		Failed:   failed,
		Status:   set.Status,
	}, nil
}

// expandPersona retrieves a persona-specific context window, asks the model
// to deepen the persona, and persists the merged result. The error return is
// recorded against this persona only.
func (s *synthesisService) expandPersona(ctx context.Context, persona *entity.Persona, expandable []string, filter contract.ChunkFilter) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	fail := func(cause error) error {
		reason := cause.Error()
		persona.ExpansionError = &reason
		persona.UpdatedAt = &now
		if updateErr := uow.PersonaRepository().Update(ctx, persona); updateErr != nil {
			s.logger.Error("SynthesisService", "Failed to record expansion error", map[string]interface{}{
				"persona_id": persona.Id, "error": updateErr.Error(),
			})
		}
		return cause
	}

	query := expansionQueryText(persona)

	contextText, err := s.retrievePersonaContext(ctx, query, filter)
	if err != nil {
		return fail(err)
	}

	personaJson, err := json.Marshal(persona.StructuredFields)
	if err != nil {
		return fail(err)
	}

	promptText := prompt.NewExpansionBuilder(prompt.ExpansionInput{
		PersonaJSON: string(personaJson),
		ContextText: contextText,
	}).Build()

	response, err := s.llmProvider.Generate(ctx, promptText, llm.WithTemperature(0.7))
	if err != nil {
		return fail(fmt.Errorf("persona expansion call: %w", err))
	}

	update, err := parsePersonaObject(response)
	if err != nil {
		return fail(err)
	}

	persona.StructuredFields = mergeExpandedFields(persona.StructuredFields, update, expandable)
	persona.ExpansionError = nil
	persona.UpdatedAt = &now
	return uow.PersonaRepository().Update(ctx, persona)
}

// retrievePersonaContext pulls interview and context chunks matching one
// persona, sharing the prompt budget between the two types.
func (s *synthesisService) retrievePersonaContext(ctx context.Context, query string, filter contract.ChunkFilter) (string, error) {
	halfBudget := s.pipelineCfg.PromptSectionBudget / 2

	interviews, err := s.retrievalService.RetrieveByText(ctx, query, constant.DocumentTypeInterview, constant.ExpansionTopK, filter)
	if err != nil {
		return "", err
	}
	contexts, err := s.retrievalService.RetrieveByText(ctx, query, constant.DocumentTypeContext, constant.ExpansionTopK, filter)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, 2)
	if text := ChunkTexts(TrimToTokenBudget(interviews, halfBudget)); text != "" {
		parts = append(parts, text)
	}
	if text := ChunkTexts(TrimToTokenBudget(contexts, halfBudget)); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *synthesisService) Show(ctx context.Context, id uuid.UUID) (*dto.PersonaSetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.PersonaSetRepository().FindOneWithPersonas(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("%w: persona set %s", apperrors.ErrNotFound, id)
	}
	return toPersonaSetResponse(set), nil
}

func (s *synthesisService) List(ctx context.Context, req *dto.ListPersonaSetsRequest) (*dto.ListPersonaSetsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	filters := make([]specification.Specification, 0, 3)
	if req.ScopeId != nil {
		filters = append(filters, specification.ByScopeID{ScopeID: *req.ScopeId})
	}
	if req.Status != "" {
		filters = append(filters, specification.ByStatus{Status: req.Status})
	}

	total, err := uow.PersonaSetRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters, specification.OrderBy{Field: "generation_cycle", Desc: true})
	if req.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: req.Limit, Offset: req.Offset})
	}

	sets, err := uow.PersonaSetRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PersonaSetListItem, len(sets))
	for i, set := range sets {
		items[i] = dto.PersonaSetListItem{
			Id:              set.Id,
			ScopeId:         set.ScopeId,
			GenerationCycle: set.GenerationCycle,
			Mode:            set.Mode,
			Status:          set.Status,
			RequestedCount:  set.RequestedCount,
			DiversityScore:  set.DiversityScore,
			CreatedAt:       set.CreatedAt,
		}
	}

	return &dto.ListPersonaSetsResponse{Items: items, Total: total}, nil
}

func (s *synthesisService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	set, err := uow.PersonaSetRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if set == nil {
		return fmt.Errorf("%w: persona set %s", apperrors.ErrNotFound, id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.PersonaRepository().DeleteByPersonaSetId(ctx, id); err != nil {
		return err
	}
	if err := uow.PersonaSetRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

// expansionQueryText derives the retrieval query from the persona's own
// fields, so expansion pulls material about people like this one.
func expansionQueryText(persona *entity.Persona) string {
	parts := make([]string, 0, 4)
	if persona.Name != "" {
		parts = append(parts, persona.Name)
	}
	for _, field := range []string{"occupation", "background", "goals", "frustrations"} {
		if value, ok := persona.StructuredFields[field]; ok {
			parts = append(parts, renderFieldValue(value))
		}
	}
	if len(parts) == 0 {
		return "user research participant"
	}
	return strings.Join(parts, ". ")
}

// chunkFilterForSet reconstructs the retrieval filter the set was generated
// with, so later stages stay scoped identically to generation.
func chunkFilterForSet(set *entity.PersonaSet) contract.ChunkFilter {
	filter := contract.ChunkFilter{ScopeID: set.ScopeId}
	raw, ok := set.GenerationConfig["document_ids"].([]interface{})
	if !ok {
		return filter
	}
	for _, item := range raw {
		str, ok := item.(string)
		if !ok {
			continue
		}
		if id, err := uuid.Parse(str); err == nil {
			filter.DocumentIDs = append(filter.DocumentIDs, id)
		}
	}
	return filter
}

// mergeExpandedFields applies the model's update to the allowed fields only.
// Demographic identity fields never change during expansion.
func mergeExpandedFields(existing, update map[string]interface{}, allowed []string) map[string]interface{} {
	merged := make(map[string]interface{}, len(existing))
	for k, v := range existing {
		merged[k] = v
	}
	for _, field := range allowed {
		value, ok := update[field]
		if !ok || value == nil {
			continue
		}
		merged[field] = value
	}
	return merged
}

func toPersonaSetResponse(set *entity.PersonaSet) *dto.PersonaSetResponse {
	personas := make([]dto.PersonaDTO, len(set.Personas))
	for i := range set.Personas {
		personas[i] = toPersonaDTO(&set.Personas[i])
	}
	return &dto.PersonaSetResponse{
		Id:                set.Id,
		ScopeId:           set.ScopeId,
		GenerationCycle:   set.GenerationCycle,
		Mode:              set.Mode,
		Status:            set.Status,
		RequestedCount:    set.RequestedCount,
		DiversityScore:    set.DiversityScore,
		RQEMetrics:        set.RQEMetrics,
		ValidationSummary: set.ValidationSummary,
		Personas:          personas,
		CreatedAt:         set.CreatedAt,
		UpdatedAt:         set.UpdatedAt,
	}
}

func toPersonaDTO(persona *entity.Persona) dto.PersonaDTO {
	return dto.PersonaDTO{
		Id:               persona.Id,
		Name:             persona.Name,
		StructuredFields: persona.StructuredFields,
		ValidationScore:  persona.ValidationScore,
		ValidationStatus: persona.ValidationStatus,
		ValidationDetail: persona.ValidationDetail,
		ExpansionError:   persona.ExpansionError,
	}
}
