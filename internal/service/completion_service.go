package service

import (
	"context"
	"fmt"

	"persona-forge-be/internal/config"
	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/pkg/llm"
	"persona-forge-be/pkg/prompt"
	"persona-forge-be/pkg/textsplit"
)

const defaultCompletionMaxTokens = 1000

type ICompletionService interface {
	// Complete answers a free-form prompt with retrieval-augmented context
	// from the indexed corpus. It fails when nothing retrievable matches.
	Complete(ctx context.Context, req *dto.CompletePromptRequest) (*dto.CompletePromptResponse, error)
}

type completionService struct {
	retrievalService IRetrievalService
	llmProvider      llm.LLMProvider
	pipelineCfg      config.PipelineConfig
	logger           logger.ILogger
}

func NewCompletionService(
	retrievalService IRetrievalService,
	llmProvider llm.LLMProvider,
	pipelineCfg config.PipelineConfig,
	log logger.ILogger,
) ICompletionService {
	return &completionService{
		retrievalService: retrievalService,
		llmProvider:      llmProvider,
		pipelineCfg:      pipelineCfg,
		logger:           log,
	}
}

func (s *completionService) Complete(ctx context.Context, req *dto.CompletePromptRequest) (*dto.CompletePromptResponse, error) {
	filter := contract.ChunkFilter{
		DocumentIDs: req.DocumentIds,
		ScopeID:     req.ScopeId,
	}

	// Empty document type searches both context and interview chunks; the
	// prompt itself is the retrieval query.
	chunks, err := s.retrievalService.RetrieveByText(ctx, req.Prompt, "", constant.CompletionTopK, filter)
	if err != nil {
		return nil, err
	}

	budget := s.pipelineCfg.PromptSectionBudget - textsplit.EstimateTokens(req.Prompt)
	kept := TrimToTokenBudget(chunks, budget)
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no relevant context found, process documents first", apperrors.ErrNotFound)
	}

	sections := make([]string, len(kept))
	for i, rc := range kept {
		sections[i] = rc.Text
	}
	promptText := prompt.NewCompletionBuilder(prompt.CompletionInput{
		UserPrompt:      req.Prompt,
		ContextSections: sections,
	}).Build()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultCompletionMaxTokens
	}

	response, err := s.llmProvider.Generate(ctx, promptText,
		llm.WithTemperature(0.7), llm.WithMaxTokens(maxTokens))
	if err != nil {
		return nil, fmt.Errorf("prompt completion call: %w", err)
	}

	s.logger.Info("CompletionService", "Prompt completed", map[string]interface{}{
		"context_used": len(kept),
		"scope_id":     req.ScopeId,
	})

	return &dto.CompletePromptResponse{
		CompletedText: response,
		ContextUsed:   len(kept),
	}, nil
}
