package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"persona-forge-be/internal/config"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/memory"
	"persona-forge-be/pkg/database"
	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/embedding/jina"
	"persona-forge-be/pkg/llm/factory"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Diagnostic probe for a deployment: checks the database, the embedding
// provider, vector math on an in-memory index, and the LLM, in that order.
// Exits non-zero on the first hard failure so it can gate a rollout.
func main() {
	color.Cyan("🔍 persona-forge diagnostic\n")
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// 1. Database
	color.Yellow("\n[1/4] Database")
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		fail("connect: %v", err)
	}
	var chunkCount int64
	if err := db.Table("chunks").Count(&chunkCount).Error; err != nil {
		fail("chunks table: %v (did you run cmd/migrate?)", err)
	}
	color.Green("ok: connected, %d chunks indexed", chunkCount)

	// 2. Embedding provider
	color.Yellow("\n[2/4] Embedding provider: %s", cfg.Ai.EmbeddingProvider)
	var provider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	case "jina":
		provider = jina.NewJinaProvider(cfg.Ai.JinaApiKey)
	default:
		provider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
	}
	gateway := embedding.NewGateway(provider, cfg.Pipeline.EmbedBatchSize, cfg.Pipeline.EmbedWorkers)

	probes := []string{
		"a bookkeeper reconciling bank statements",
		"a student preparing for final exams",
	}
	vectors, err := gateway.EmbedBatch(ctx, probes, embedding.TaskTypeDocument)
	if err != nil {
		fail("embed: %v", err)
	}
	color.Green("ok: embedded %d probes, dim=%d", len(vectors), len(vectors[0]))

	// 3. Vector search, against an in-memory index so the check is
	// independent of pgvector state.
	color.Yellow("\n[3/4] Vector search")
	index := memory.NewChunkIndex()
	now := time.Now()
	chunks := make([]*entity.Chunk, len(probes))
	for i, text := range probes {
		chunks[i] = &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: uuid.New(),
			ChunkIndex: 0,
			Text:       text,
			Embedding:  vectors[i],
			CreatedAt:  now,
		}
	}
	if err := index.CreateBulk(ctx, chunks); err != nil {
		fail("index: %v", err)
	}

	queryVector, err := gateway.EmbedOne(ctx, "accounting and finance work", embedding.TaskTypeQuery)
	if err != nil {
		fail("embed query: %v", err)
	}
	scored, err := index.SearchSimilar(ctx, queryVector, 2, contract.ChunkFilter{})
	if err != nil {
		fail("search: %v", err)
	}
	if len(scored) == 0 {
		fail("search returned no results")
	}
	if scored[0].Chunk.Text != probes[0] {
		color.Red("warn: nearest neighbor is not the bookkeeping probe, embeddings may be degenerate")
	}
	color.Green("ok: top match %.3f %q", scored[0].Similarity, truncate(scored[0].Chunk.Text, 40))

	// 4. LLM
	color.Yellow("\n[4/4] LLM provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, cfg.Ai.LLMApiKey)
	if err != nil {
		fail("init: %v", err)
	}
	reply, err := llmProvider.Generate(ctx, `Reply with the single word "ready".`)
	if err != nil {
		fail("generate: %v", err)
	}
	color.Green("ok: model replied %q", truncate(reply, 40))

	color.Cyan("\n✅ All checks passed")
}

func fail(format string, args ...interface{}) {
	color.Red("FAIL: "+format, args...)
	os.Exit(1)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s…", s[:n])
}
