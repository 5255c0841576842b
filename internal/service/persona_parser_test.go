package service

import (
	"errors"
	"testing"

	"persona-forge-be/internal/pkg/apperrors"
)

func TestParsePersonaArrayPlainJSON(t *testing.T) {
	personas, err := parsePersonaArray(`[{"name": "Ana", "age": 34}, {"name": "Ben"}]`)
	if err != nil {
		t.Fatalf("parsePersonaArray: %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("got %d personas, want 2", len(personas))
	}
	if personas[0]["name"] != "Ana" {
		t.Errorf("first persona name = %v", personas[0]["name"])
	}
}

func TestParsePersonaArrayStripsCodeFences(t *testing.T) {
	response := "```json\n[{\"name\": \"Ana\"}]\n```"
	personas, err := parsePersonaArray(response)
	if err != nil {
		t.Fatalf("parsePersonaArray: %v", err)
	}
	if len(personas) != 1 {
		t.Fatalf("got %d personas, want 1", len(personas))
	}
}

func TestParsePersonaArrayRecoversFromSurroundingProse(t *testing.T) {
	response := `Here are your personas:
[{"name": "Ana"}, {"name": "Ben"}]
Let me know if you need more.`
	personas, err := parsePersonaArray(response)
	if err != nil {
		t.Fatalf("parsePersonaArray: %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("got %d personas, want 2", len(personas))
	}
}

func TestParsePersonaArrayRejectsGarbage(t *testing.T) {
	cases := []string{
		"I cannot help with that.",
		"[]",
		`[{"age": 30}]`, // persona without a name
		`{"name": "Ana"}`,
	}
	for _, response := range cases {
		if _, err := parsePersonaArray(response); !errors.Is(err, apperrors.ErrGenerationParse) {
			t.Errorf("parsePersonaArray(%q) error = %v, want ErrGenerationParse", response, err)
		}
	}
}

func TestParsePersonaObject(t *testing.T) {
	persona, err := parsePersonaObject("```\n{\"name\": \"Ana\", \"goals\": [\"ship\"]}\n```")
	if err != nil {
		t.Fatalf("parsePersonaObject: %v", err)
	}
	if persona["name"] != "Ana" {
		t.Errorf("name = %v", persona["name"])
	}

	if _, err := parsePersonaObject(`["not", "an", "object"]`); !errors.Is(err, apperrors.ErrGenerationParse) {
		t.Errorf("array input error = %v, want ErrGenerationParse", err)
	}
}
