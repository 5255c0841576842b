package dto

import "github.com/google/uuid"

type CompletePromptRequest struct {
	Prompt    string `json:"prompt" validate:"required"`
	MaxTokens int    `json:"max_tokens" validate:"omitempty,min=100,max=4000"`
	// Optional corpus scoping, same precedence as generation: document ids
	// beat scope id, neither means the whole corpus.
	ScopeId     *uuid.UUID  `json:"scope_id"`
	DocumentIds []uuid.UUID `json:"document_ids"`
}

type CompletePromptResponse struct {
	CompletedText string `json:"completed_text"`
	// ContextUsed counts the retrieved chunks that made it into the prompt.
	ContextUsed int `json:"context_used"`
}
