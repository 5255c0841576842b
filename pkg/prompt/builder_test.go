package prompt

import (
	"strings"
	"testing"
)

func TestClassifyMode(t *testing.T) {
	tests := []struct {
		name          string
		hasContext    bool
		hasInterviews bool
		want          Mode
	}{
		{"both types present", true, true, ModeBoth},
		{"interviews only", false, true, ModeInterviewsOnly},
		{"context only", true, false, ModeContextOnly},
		{"nothing available", false, false, ModeNoDocs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMode(tt.hasContext, tt.hasInterviews); got != tt.want {
				t.Errorf("ClassifyMode(%v, %v) = %v, want %v", tt.hasContext, tt.hasInterviews, got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeNoDocs, "no_docs"},
		{ModeInterviewsOnly, "interviews_only"},
		{ModeContextOnly, "context_only"},
		{ModeBoth, "both"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestGenerationBuilderSections(t *testing.T) {
	input := GenerationInput{
		PersonaCount:      3,
		ContextText:       "Users want faster checkout.",
		InterviewText:     "I hate waiting in line.",
		Topic:             "e-commerce checkout",
		UserContext:       "mid-market retailers",
		Methodology:       "jobs-to-be-done",
		OutputFormat:      "engaging",
		EthicalGuardrails: true,
		DiversityHints:    []string{"vary occupations across personas"},
	}

	out := NewGenerationBuilder(ModeBoth, input).Build()

	for _, want := range []string{
		"<interview_transcripts>",
		"I hate waiting in line.",
		"<research_context>",
		"Users want faster checkout.",
		"Topic: e-commerce checkout",
		"Methodology: jobs-to-be-done",
		"<diversity_requirements>",
		"vary occupations across personas",
		"<guidelines>",
		"exactly 3 persona objects",
		"vivid and story-driven",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerationBuilderSingleModeOmitsEmptySections(t *testing.T) {
	input := GenerationInput{
		PersonaCount: 2,
		ContextText:  "Market research summary.",
	}

	out := NewGenerationBuilder(ModeContextOnly, input).Build()

	if strings.Contains(out, "<interview_transcripts>") {
		t.Error("context-only prompt must not contain an interview section")
	}
	if strings.Contains(out, "<diversity_requirements>") {
		t.Error("prompt must not contain empty diversity section")
	}
	if strings.Contains(out, "<guidelines>") {
		t.Error("guardrails are off by default")
	}
	if !strings.Contains(out, "exactly 2 persona objects") {
		t.Error("output contract missing persona count")
	}
}

func TestGenerationBuilderModeSelectsTask(t *testing.T) {
	interviewsOnly := NewGenerationBuilder(ModeInterviewsOnly, GenerationInput{PersonaCount: 1, InterviewText: "x"}).Build()
	contextOnly := NewGenerationBuilder(ModeContextOnly, GenerationInput{PersonaCount: 1, ContextText: "x"}).Build()

	if !strings.Contains(interviewsOnly, "Only interview transcripts are available") {
		t.Error("interviews-only prompt carries the wrong task block")
	}
	if !strings.Contains(contextOnly, "Only research context is available") {
		t.Error("context-only prompt carries the wrong task block")
	}
	if interviewsOnly == contextOnly {
		t.Error("modes must produce distinct prompts")
	}
}

func TestExpansionBuilder(t *testing.T) {
	out := NewExpansionBuilder(ExpansionInput{
		PersonaJSON: `{"name":"Dana"}`,
		ContextText: "Dana mentioned repeated checkout failures.",
	}).Build()

	for _, want := range []string{
		"<persona>",
		`{"name":"Dana"}`,
		"<source_material>",
		"checkout failures",
		"must not change",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expansion prompt missing %q", want)
		}
	}
}

func TestCompletionBuilderNumbersContextSections(t *testing.T) {
	out := NewCompletionBuilder(CompletionInput{
		UserPrompt:      "how do owners track cash flow?",
		ContextSections: []string{"owners check dashboards daily", "monthly reports arrive too late"},
	}).Build()

	for _, want := range []string{
		"Context 1:\nowners check dashboards daily",
		"Context 2:\nmonthly reports arrive too late",
		"<user_prompt>\nhow do owners track cash flow?",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("completion prompt missing %q", want)
		}
	}
}
