// Exercises the local Ollama stack end to end: embeddings through the
// gateway, and persona generation through the real prompt builder and parser.
// Needs a running Ollama server; every test skips cleanly without one.

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/llm/ollama"
	"persona-forge-be/pkg/prompt"
)

const (
	ollamaBaseURL    = "http://localhost:11434"
	ollamaEmbedModel = "nomic-embed-text"
)

func ollamaChatModel() string {
	if model := os.Getenv("LLM_MODEL"); model != "" {
		return model
	}
	return "llama3"
}

func requireOllama(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ollamaBaseURL, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Skipf("Ollama not running at %s: %v", ollamaBaseURL, err)
	}
	res.Body.Close()
}

func TestOllamaEmbeddingGateway(t *testing.T) {
	requireOllama(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider := embedding.NewOllamaProvider(ollamaBaseURL, ollamaEmbedModel)
	gateway := embedding.NewGateway(provider, 4, 2)

	texts := []string{
		"a bookkeeper reconciling bank statements every month",
		"a student cramming for final exams",
	}
	vectors, err := gateway.EmbedBatch(ctx, texts, embedding.TaskTypeDocument)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if len(vectors[0]) == 0 || len(vectors[0]) != len(vectors[1]) {
		t.Fatalf("inconsistent dimensions: %d vs %d", len(vectors[0]), len(vectors[1]))
	}
	t.Logf("✅ Embedded %d texts, dim=%d", len(vectors), len(vectors[0]))
}

func TestOllamaPersonaGeneration(t *testing.T) {
	requireOllama(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	provider := ollama.NewOllamaProvider(ollamaBaseURL, ollamaChatModel())

	input := prompt.GenerationInput{
		PersonaCount: 2,
		InterviewText: `Interviewer: What made you switch to cloud bookkeeping?
Owner: Clients kept asking to see their numbers. Bank feeds save my
bookkeeper a day a week, but migrating fifteen years of ledgers scared me.`,
		OutputFormat: "json",
	}
	promptText := prompt.NewGenerationBuilder(prompt.ModeInterviewsOnly, input).Build()

	response, err := provider.Generate(ctx, promptText)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	t.Logf("Raw response: %.200s", response)

	// The production parser must cope with whatever the local model returns.
	cleaned := strings.TrimSpace(response)
	if start := strings.IndexByte(cleaned, '['); start >= 0 {
		if end := strings.LastIndexByte(cleaned, ']'); end > start {
			cleaned = cleaned[start : end+1]
		}
	}
	var personas []map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &personas); err != nil {
		t.Fatalf("response is not a persona array: %v\nraw: %s", err, response)
	}
	if len(personas) == 0 {
		t.Fatal("model returned an empty persona array")
	}
	for i, p := range personas {
		if name, _ := p["name"].(string); name == "" {
			t.Errorf("persona %d has no name: %v", i, p)
		}
	}
	t.Logf("✅ Parsed %d personas", len(personas))
}
