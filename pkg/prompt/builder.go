package prompt

import (
	"fmt"
	"strings"

	"persona-forge-be/internal/constant"
)

// GenerationInput carries everything one synthesis prompt needs: retrieved
// material, operator-supplied free text, and presentation options. Operator
// fields pass through verbatim.
type GenerationInput struct {
	PersonaCount      int
	ContextText       string
	InterviewText     string
	UserContext       string
	Topic             string
	Methodology       string
	OutputFormat      string
	EthicalGuardrails bool
	DiversityHints    []string
}

// GenerationBuilder assembles the persona synthesis prompt for one mode.
type GenerationBuilder struct {
	mode  Mode
	input GenerationInput
}

func NewGenerationBuilder(mode Mode, input GenerationInput) *GenerationBuilder {
	return &GenerationBuilder{mode: mode, input: input}
}

// Build renders the full prompt. The caller guarantees mode != ModeNoDocs.
func (b *GenerationBuilder) Build() string {
	var prompt strings.Builder

	b.writeTask(&prompt)
	b.writeSourceMaterial(&prompt)
	b.writeOperatorBrief(&prompt)
	b.writeDiversityHints(&prompt)
	b.writeGuardrails(&prompt)
	b.writeOutputContract(&prompt)

	return prompt.String()
}

func (b *GenerationBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	switch b.mode {
	case ModeInterviewsOnly:
		prompt.WriteString(constant.PersonaTaskInterviewsOnly)
	case ModeContextOnly:
		prompt.WriteString(constant.PersonaTaskContextOnly)
	default:
		prompt.WriteString(constant.PersonaTaskBoth)
	}
	prompt.WriteString("\n</task>\n\n")
}

func (b *GenerationBuilder) writeSourceMaterial(prompt *strings.Builder) {
	if b.input.InterviewText != "" {
		prompt.WriteString("<interview_transcripts>\n")
		prompt.WriteString(b.input.InterviewText)
		prompt.WriteString("\n</interview_transcripts>\n\n")
	}
	if b.input.ContextText != "" {
		prompt.WriteString("<research_context>\n")
		prompt.WriteString(b.input.ContextText)
		prompt.WriteString("\n</research_context>\n\n")
	}
}

func (b *GenerationBuilder) writeOperatorBrief(prompt *strings.Builder) {
	if b.input.UserContext == "" && b.input.Topic == "" && b.input.Methodology == "" {
		return
	}
	prompt.WriteString("<project_brief>\n")
	if b.input.Topic != "" {
		prompt.WriteString("Topic: " + b.input.Topic + "\n")
	}
	if b.input.UserContext != "" {
		prompt.WriteString("Additional context: " + b.input.UserContext + "\n")
	}
	if b.input.Methodology != "" {
		prompt.WriteString("Methodology: " + b.input.Methodology + "\n")
	}
	prompt.WriteString("</project_brief>\n\n")
}

func (b *GenerationBuilder) writeDiversityHints(prompt *strings.Builder) {
	if len(b.input.DiversityHints) == 0 {
		return
	}
	prompt.WriteString("<diversity_requirements>\n")
	prompt.WriteString("A previous attempt produced personas that were too similar. Differentiate this set:\n")
	for _, hint := range b.input.DiversityHints {
		prompt.WriteString("- " + hint + "\n")
	}
	prompt.WriteString("</diversity_requirements>\n\n")
}

func (b *GenerationBuilder) writeGuardrails(prompt *strings.Builder) {
	if !b.input.EthicalGuardrails {
		return
	}
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString(constant.PersonaEthicalGuardrails)
	prompt.WriteString("\n</guidelines>\n\n")
}

func (b *GenerationBuilder) writeOutputContract(prompt *strings.Builder) {
	prompt.WriteString("<output>\n")
	if directive, ok := constant.PersonaFormatDirectives[b.input.OutputFormat]; ok {
		prompt.WriteString(directive + "\n")
	}
	fmt.Fprintf(prompt, constant.PersonaOutputContract, b.input.PersonaCount)
	prompt.WriteString("\n</output>\n")
}

// CompletionInput carries the operator's free-form prompt and the retrieved
// corpus sections backing the answer.
type CompletionInput struct {
	UserPrompt      string
	ContextSections []string
}

// CompletionBuilder assembles the RAG completion prompt.
type CompletionBuilder struct {
	input CompletionInput
}

func NewCompletionBuilder(input CompletionInput) *CompletionBuilder {
	return &CompletionBuilder{input: input}
}

func (b *CompletionBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString(constant.PromptCompletionTask)
	prompt.WriteString("\n</task>\n\n")

	prompt.WriteString("<context_information>\n")
	for i, section := range b.input.ContextSections {
		fmt.Fprintf(&prompt, "Context %d:\n%s\n\n", i+1, section)
	}
	prompt.WriteString("</context_information>\n\n")

	prompt.WriteString("<user_prompt>\n")
	prompt.WriteString(b.input.UserPrompt)
	prompt.WriteString("\n</user_prompt>\n")

	return prompt.String()
}

// ExpansionInput carries one persona and its retrieved personal context.
type ExpansionInput struct {
	PersonaJSON string
	ContextText string
}

// ExpansionBuilder assembles the per-persona deepening prompt.
type ExpansionBuilder struct {
	input ExpansionInput
}

func NewExpansionBuilder(input ExpansionInput) *ExpansionBuilder {
	return &ExpansionBuilder{input: input}
}

func (b *ExpansionBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString(constant.PersonaExpansionTask)
	prompt.WriteString("\n</task>\n\n")

	if b.input.ContextText != "" {
		prompt.WriteString("<source_material>\n")
		prompt.WriteString(b.input.ContextText)
		prompt.WriteString("\n</source_material>\n\n")
	}

	prompt.WriteString("<persona>\n")
	prompt.WriteString(b.input.PersonaJSON)
	prompt.WriteString("\n</persona>\n\n")

	prompt.WriteString("Now return the enriched persona as a single JSON object:")

	return prompt.String()
}
