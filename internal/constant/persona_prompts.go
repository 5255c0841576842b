package constant

// Task preambles per synthesis mode. One block per mode keeps the dispatch
// exhaustively testable instead of branching on availability flags downstream.
const (
	PersonaTaskBoth = `You are a senior UX researcher synthesizing user personas.
Ground every persona in the interview excerpts below; use the research context
to fill in market and environmental detail. Interview evidence outranks
context when they disagree.`

	PersonaTaskInterviewsOnly = `You are a senior UX researcher synthesizing user personas.
Only interview transcripts are available. Derive every persona directly from
what the interviewed users actually said; do not invent market context.`

	PersonaTaskContextOnly = `You are a senior UX researcher synthesizing user personas.
Only research context is available, no interview transcripts. Derive plausible
personas from the documented context and clearly plausible inferences; do not
fabricate verbatim user quotes.`
)

// PersonaOutputContract describes the JSON array the synthesizer parses.
// Every mode appends it; the %d carries the requested persona count.
const PersonaOutputContract = `Return a JSON array with exactly %d persona objects. Each object uses these keys:
"name" (string), "age" (string), "gender" (string), "location" (string),
"occupation" (string), "background" (string), "goals" (array of strings),
"frustrations" (array of strings), "behaviors" (array of strings),
"motivations" (array of strings), "tech_comfort" (string),
"quotes" (array of strings).
Return ONLY the JSON array. No markdown fences, no commentary.`

// PersonaEthicalGuardrails is appended when the operator enables the toggle.
const PersonaEthicalGuardrails = `Ethical constraints:
- Avoid demographic stereotypes; vary age, gender, location and occupation believably.
- Do not fabricate sensitive attributes (health, religion, ethnicity) unless the source material states them.
- Quotes must be consistent with the source material, never copied personal identifiers.`

// PersonaExpansionTask instructs the per-persona deepening call.
const PersonaExpansionTask = `You are enriching one existing user persona with additional depth.
Keep the persona's identity exactly as given: name, age, gender, location and
occupation must not change. Deepen background, goals, frustrations, behaviors,
motivations, tech_comfort and quotes using the supplied source material.
Return ONLY one JSON object with the same keys as the input persona.`

// PromptCompletionTask frames the free-form completion call: answer the
// operator's prompt from retrieved corpus material only.
const PromptCompletionTask = `You are a helpful assistant that provides accurate information based on the provided context.
Complete the user's prompt using the context information below. Provide a
comprehensive and accurate response grounded in that context.`

// Presentation directives per output format. "json" adds nothing beyond the
// output contract.
var PersonaFormatDirectives = map[string]string{
	"profile":     "Write each persona as a polished one-page profile narrative inside its JSON fields.",
	"chat":        "Voice each persona conversationally, as if introducing themselves in a chat.",
	"proto":       "Keep fields terse and skeletal: bullet-like fragments suitable for a proto-persona workshop.",
	"adhoc":       "Favor quick, informal phrasing; these personas support an ad-hoc design discussion.",
	"engaging":    "Make each persona vivid and story-driven, with a memorable detail per field.",
	"goal_based":  "Center every field on the persona's goals; lead goals with the primary job-to-be-done.",
	"role_based":  "Center every field on the persona's role and responsibilities in their organization.",
	"interactive": "Phrase fields so a facilitator could role-play the persona in a live session.",
}
