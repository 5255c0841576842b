package service

import (
	"testing"

	"persona-forge-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func budgetChunks(tokens ...int) []*RetrievedChunk {
	chunks := make([]*RetrievedChunk, len(tokens))
	for i, n := range tokens {
		chunks[i] = &RetrievedChunk{Text: "chunk", Tokens: n}
	}
	return chunks
}

func TestTrimToTokenBudgetSkipsOversizedChunks(t *testing.T) {
	// The second chunk would overflow; the smaller third one still fits and
	// must not be discarded with it.
	kept := TrimToTokenBudget(budgetChunks(50, 60, 30), 90)

	if assert.Len(t, kept, 2) {
		assert.Equal(t, 50, kept[0].Tokens)
		assert.Equal(t, 30, kept[1].Tokens)
	}
}

func TestTrimToTokenBudgetKeepsWholeChunksOnly(t *testing.T) {
	kept := TrimToTokenBudget(budgetChunks(100, 100), 150)
	assert.Len(t, kept, 1)
}

func TestTrimToTokenBudgetEmptyBudget(t *testing.T) {
	assert.Nil(t, TrimToTokenBudget(budgetChunks(10), 0))
}

func TestStageTopK(t *testing.T) {
	assert.Equal(t, constant.GenerationTopK, stageTopK(constant.StageGeneration))
	assert.Equal(t, constant.ExpansionTopK, stageTopK(constant.StageExpansion))
	assert.Equal(t, constant.ValidationTopK, stageTopK(constant.StageValidation))
	assert.Equal(t, constant.GenerationTopK, stageTopK("unknown"))
}
