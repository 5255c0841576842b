package service

import (
	"strings"
	"testing"

	"persona-forge-be/internal/entity"

	"github.com/google/uuid"
)

func TestMergeExpandedFieldsPreservesIdentity(t *testing.T) {
	existing := map[string]interface{}{
		"name":       "Ana",
		"age":        34,
		"occupation": "bookkeeper",
		"goals":      "close the books faster",
	}
	update := map[string]interface{}{
		"name":       "Annette", // the model trying to rename is ignored
		"age":        50,
		"goals":      "close the books faster, with richer detail",
		"background": "fifteen years in a small firm",
	}

	merged := mergeExpandedFields(existing, update, []string{"goals", "background"})

	if merged["name"] != "Ana" || merged["age"] != 34 {
		t.Errorf("identity fields changed: %v", merged)
	}
	if merged["goals"] != "close the books faster, with richer detail" {
		t.Errorf("goals not deepened: %v", merged["goals"])
	}
	if merged["background"] != "fifteen years in a small firm" {
		t.Errorf("background not added: %v", merged["background"])
	}
	// Source map untouched.
	if existing["goals"] != "close the books faster" {
		t.Errorf("merge mutated its input: %v", existing["goals"])
	}
}

func TestMergeExpandedFieldsIgnoresNilAndMissing(t *testing.T) {
	existing := map[string]interface{}{"name": "Ana", "goals": "original"}
	update := map[string]interface{}{"goals": nil}

	merged := mergeExpandedFields(existing, update, []string{"goals", "background"})
	if merged["goals"] != "original" {
		t.Errorf("nil update should not erase goals: %v", merged["goals"])
	}
	if _, ok := merged["background"]; ok {
		t.Error("background appeared from nowhere")
	}
}

func TestChunkFilterForSetRestoresDocumentScope(t *testing.T) {
	scopeId := uuid.New()
	docA := uuid.New()
	docB := uuid.New()

	set := &entity.PersonaSet{
		ScopeId: &scopeId,
		GenerationConfig: map[string]interface{}{
			// JSON round-tripping through the jsonb column yields []interface{}.
			"document_ids": []interface{}{docA.String(), docB.String(), "not-a-uuid"},
		},
	}

	filter := chunkFilterForSet(set)
	if filter.ScopeID == nil || *filter.ScopeID != scopeId {
		t.Errorf("scope not restored: %v", filter.ScopeID)
	}
	if len(filter.DocumentIDs) != 2 {
		t.Fatalf("got %d document ids, want 2 (invalid entries skipped)", len(filter.DocumentIDs))
	}
	if filter.DocumentIDs[0] != docA || filter.DocumentIDs[1] != docB {
		t.Errorf("document ids out of order: %v", filter.DocumentIDs)
	}
}

func TestChunkFilterForSetWithoutDocumentIds(t *testing.T) {
	set := &entity.PersonaSet{GenerationConfig: map[string]interface{}{}}
	filter := chunkFilterForSet(set)
	if filter.ScopeID != nil || len(filter.DocumentIDs) != 0 {
		t.Errorf("expected empty filter, got %+v", filter)
	}
}

func TestExpansionQueryTextUsesPersonaFields(t *testing.T) {
	persona := &entity.Persona{
		Name: "Ana",
		StructuredFields: map[string]interface{}{
			"occupation": "bookkeeper",
			"goals":      []interface{}{"faster month-end", "fewer late evenings"},
		},
	}

	query := expansionQueryText(persona)
	for _, want := range []string{"Ana", "bookkeeper", "faster month-end"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestExpansionQueryTextFallback(t *testing.T) {
	persona := &entity.Persona{StructuredFields: map[string]interface{}{}}
	if query := expansionQueryText(persona); query == "" {
		t.Error("empty persona should still produce a usable query")
	}
}

func TestDiversityHintsNamePairs(t *testing.T) {
	hints := diversityHints([]entity.SimilarPair{
		{NameA: "Ana", NameB: "Ben", Similarity: 0.91},
		{NameA: "Cai", NameB: "Dee", Similarity: 0.74},
	})

	if len(hints) != 2 {
		t.Fatalf("got %d hints, want 2", len(hints))
	}
	if !strings.Contains(hints[0], "Ana") || !strings.Contains(hints[0], "Ben") {
		t.Errorf("hint missing names: %q", hints[0])
	}
	if !strings.Contains(hints[0], "91%") {
		t.Errorf("hint missing similarity percentage: %q", hints[0])
	}
}
