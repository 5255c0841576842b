package apperrors

import "errors"

// Sentinel errors for the synthesis pipeline. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can match with errors.Is while the
// HTTP layer maps each to a distinct status and machine code.
var (
	// ErrEncoding: chunking could not token-count the input (bad bytes
	// reaching the splitter).
	ErrEncoding = errors.New("input text has an unsupported encoding")

	// ErrEmbeddingUnavailable: the embedding backend kept failing after the
	// bounded retry budget.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")

	// ErrVectorIndex: similarity query or chunk upsert failed after retries.
	ErrVectorIndex = errors.New("vector index operation failed")

	// ErrInsufficientInput: no documents of any usable type in the requested
	// scope; generation refuses to call the model.
	ErrInsufficientInput = errors.New("no usable documents available for synthesis")

	// ErrGenerationParse: the model response was not structurally parseable;
	// never retried, nothing persisted.
	ErrGenerationParse = errors.New("model output could not be parsed")

	// ErrInsufficientData: scoring has too few personas or chunks. A defined
	// non-result, distinct from a numeric zero.
	ErrInsufficientData = errors.New("not enough data to compute a score")

	ErrNotFound          = errors.New("resource not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
