package textsplit

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when the input text is not valid UTF-8.
// Upstream extraction should never let this through, but we guard anyway.
var ErrInvalidEncoding = errors.New("textsplit: text is not valid UTF-8")

// charsPerToken is the character-to-token heuristic used across the pipeline.
// It matches the budget accounting in retrieval and prompt packing.
const charsPerToken = 4

// Piece is one bounded segment of a document's text, the unit of embedding
// and retrieval. TokenStart/TokenEnd are estimated spans, not exact counts.
type Piece struct {
	Index      int
	TokenStart int
	TokenEnd   int
	Text       string
}

// EstimateTokens estimates the token count of a string using the chars/4
// heuristic. Non-empty text always counts as at least one token.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := utf8.RuneCountInString(text) / charsPerToken
	if n < 1 {
		return 1
	}
	return n
}

// Split cuts text into overlapping token-bounded pieces. Each piece targets
// maxTokens, carrying overlapTokens from the tail of piece i into the head of
// piece i+1. Splitting is deterministic: identical input and parameters yield
// identical boundaries. Text that fits in a single window yields exactly one
// piece with zero overlap.
func Split(text string, maxTokens, overlapTokens int) ([]Piece, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidEncoding
	}
	if text == "" {
		return nil, nil
	}
	if maxTokens < 1 {
		maxTokens = 1
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}

	runes := []rune(text)
	totalLen := len(runes)
	maxChars := maxTokens * charsPerToken
	overlapChars := overlapTokens * charsPerToken

	if totalLen <= maxChars {
		return []Piece{{
			Index:      0,
			TokenStart: 0,
			TokenEnd:   tokenCeil(totalLen),
			Text:       text,
		}}, nil
	}

	var pieces []Piece
	start := 0
	for start < totalLen {
		end := start + maxChars
		if end > totalLen {
			end = totalLen
		} else {
			// Prefer a sentence boundary in the last 20% of the window so we
			// do not cut structured text mid-sentence.
			if cut := sentenceCut(runes, start+maxChars*4/5, end); cut > 0 {
				end = cut
			}
		}

		pieces = append(pieces, Piece{
			Index:      len(pieces),
			TokenStart: start / charsPerToken,
			TokenEnd:   tokenCeil(end),
			Text:       string(runes[start:end]),
		})

		if end >= totalLen {
			break
		}

		// Guarantees forward progress even when overlap >= window size.
		next := end - overlapChars
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return pieces, nil
}

// sentenceCut returns the rune index just past the last sentence boundary in
// runes[searchStart:end), or 0 when none exists in that window.
func sentenceCut(runes []rune, searchStart, end int) int {
	if searchStart < 0 {
		searchStart = 0
	}
	if searchStart >= end {
		return 0
	}
	window := string(runes[searchStart:end])
	best := -1
	for _, marker := range []string{". ", ".\n", "\n\n"} {
		if idx := strings.LastIndex(window, marker); idx > best {
			best = idx
		}
	}
	if best < 0 {
		return 0
	}
	// Keep the terminator with the leading piece.
	return searchStart + utf8.RuneCountInString(window[:best]) + 1
}

func tokenCeil(chars int) int {
	return (chars + charsPerToken - 1) / charsPerToken
}
