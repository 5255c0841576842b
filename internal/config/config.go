package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Pipeline PipelineConfig
	Scoring  ScoringConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	RealtimeLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
	RedisURL           string
	RedisEnabled       bool
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	GeminiApiKey      string
	JinaApiKey        string
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string // "ollama", "gemini", "huggingface"
	LLMModel          string // e.g. "llama3", "gemini-1.5-flash"
	LLMBaseURL        string
	LLMApiKey         string
	LLMMaxAttempts    int
}

type PipelineConfig struct {
	ChunkMaxTokens      int
	ChunkOverlapTokens  int
	EmbedBatchSize      int
	EmbedWorkers        int
	ExpansionWorkers    int
	PromptSectionBudget int
	ProcessTopic        string
}

type ScoringConfig struct {
	ValidationThreshold float64
	AttributeThreshold  float64
	RQEThreshold        float64
	MaxIterations       int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			RealtimeLogPath:    getEnv("REALTIME_LOG_PATH", "realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisEnabled:       getEnvAsBool("REDIS_ENABLED", false),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiApiKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaApiKey:        getEnv("JINA_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMApiKey:         getEnv("LLM_API_KEY", ""),
			LLMMaxAttempts:    getEnvAsInt("LLM_MAX_ATTEMPTS", 3),
		},
		Pipeline: PipelineConfig{
			ChunkMaxTokens:      getEnvAsInt("CHUNK_MAX_TOKENS", 2000),
			ChunkOverlapTokens:  getEnvAsInt("CHUNK_OVERLAP_TOKENS", 200),
			EmbedBatchSize:      getEnvAsInt("EMBED_BATCH_SIZE", 16),
			EmbedWorkers:        getEnvAsInt("EMBED_WORKERS", 4),
			ExpansionWorkers:    getEnvAsInt("EXPANSION_WORKERS", 3),
			PromptSectionBudget: getEnvAsInt("PROMPT_SECTION_BUDGET", 6000),
			ProcessTopic:        getEnv("PROCESS_DOCUMENT_TOPIC_NAME", "PROCESS_DOCUMENT"),
		},
		Scoring: ScoringConfig{
			ValidationThreshold: getEnvAsFloat("VALIDATION_THRESHOLD", 0.70),
			AttributeThreshold:  getEnvAsFloat("ATTRIBUTE_THRESHOLD", 0.80),
			RQEThreshold:        getEnvAsFloat("RQE_THRESHOLD", 0.75),
			MaxIterations:       getEnvAsInt("MAX_ITERATIONS", 3),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
