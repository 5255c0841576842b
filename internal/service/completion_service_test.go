package service

import (
	"context"
	"testing"

	"persona-forge-be/internal/config"
	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletionFixture(chunks map[string][]*RetrievedChunk, model *cannedLLM) ICompletionService {
	return NewCompletionService(
		&fakeRetrieval{availability: entity.ScopeAvailability{}, chunks: chunks},
		model,
		config.PipelineConfig{PromptSectionBudget: 6000},
		noopLogger{},
	)
}

func TestCompleteGroundsAnswerInRetrievedChunks(t *testing.T) {
	model := &cannedLLM{responses: []string{"Bank feeds reconcile transactions automatically."}}
	svc := newCompletionFixture(map[string][]*RetrievedChunk{
		constant.DocumentTypeContext:   stageChunks(constant.DocumentTypeContext, "bank feeds import transactions daily"),
		constant.DocumentTypeInterview: stageChunks(constant.DocumentTypeInterview, "my bookkeeper saves a day a week"),
	}, model)

	res, err := svc.Complete(context.Background(), &dto.CompletePromptRequest{
		Prompt: "how do bank feeds help bookkeepers?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bank feeds reconcile transactions automatically.", res.CompletedText)
	assert.Equal(t, 2, res.ContextUsed)
	assert.Equal(t, 1, model.calls)
}

func TestCompleteWithoutContextFails(t *testing.T) {
	model := &cannedLLM{responses: []string{"should never be returned"}}
	svc := newCompletionFixture(nil, model)

	_, err := svc.Complete(context.Background(), &dto.CompletePromptRequest{Prompt: "anything"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Zero(t, model.calls, "model must not be called without context")
}
