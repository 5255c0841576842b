package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"persona-forge-be/internal/pkg/apperrors"
)

// parsePersonaArray extracts the persona objects from a model response.
// Models occasionally wrap the array in markdown fences or prepend prose, so
// parsing falls back to the outermost bracket pair before giving up. A
// response that still fails to parse is a deterministic failure: it is never
// retried and nothing gets persisted.
func parsePersonaArray(response string) ([]map[string]interface{}, error) {
	cleaned := stripCodeFences(response)

	var personas []map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &personas); err == nil {
		return validPersonas(personas)
	}

	recovered, ok := sliceBetween(cleaned, '[', ']')
	if ok {
		if err := json.Unmarshal([]byte(recovered), &personas); err == nil {
			return validPersonas(personas)
		}
	}

	return nil, fmt.Errorf("%w: response is not a JSON persona array", apperrors.ErrGenerationParse)
}

// parsePersonaObject extracts a single persona object, used by expansion.
func parsePersonaObject(response string) (map[string]interface{}, error) {
	cleaned := stripCodeFences(response)

	var persona map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &persona); err == nil {
		return persona, nil
	}

	recovered, ok := sliceBetween(cleaned, '{', '}')
	if ok {
		if err := json.Unmarshal([]byte(recovered), &persona); err == nil {
			return persona, nil
		}
	}

	return nil, fmt.Errorf("%w: response is not a JSON persona object", apperrors.ErrGenerationParse)
}

func validPersonas(personas []map[string]interface{}) ([]map[string]interface{}, error) {
	if len(personas) == 0 {
		return nil, fmt.Errorf("%w: response holds an empty persona array", apperrors.ErrGenerationParse)
	}
	for i, p := range personas {
		if personaName(p) == "" {
			return nil, fmt.Errorf("%w: persona %d has no name", apperrors.ErrGenerationParse, i)
		}
	}
	return personas, nil
}

func personaName(fields map[string]interface{}) string {
	if name, ok := fields["name"].(string); ok {
		return strings.TrimSpace(name)
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// sliceBetween returns the substring from the first open delimiter to the
// last close delimiter, inclusive.
func sliceBetween(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
