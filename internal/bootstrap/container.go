package bootstrap

import (
	"context"
	"log"

	"persona-forge-be/internal/config"
	"persona-forge-be/internal/controller"
	"persona-forge-be/internal/handler"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/realtime"
	"persona-forge-be/internal/repository/implementation"
	"persona-forge-be/internal/repository/memory"
	"persona-forge-be/internal/repository/unitofwork"
	"persona-forge-be/internal/service"
	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/embedding/jina"
	"persona-forge-be/pkg/llm"
	"persona-forge-be/pkg/llm/factory"

	pktNats "persona-forge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ScopeController      controller.IScopeController
	DocumentController   controller.IDocumentController
	PersonaSetController controller.IPersonaSetController
	AnalyticsController  controller.IAnalyticsController
	CompletionController controller.ICompletionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	RealtimeHub     *realtime.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.JinaApiKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	gateway := embedding.NewGateway(embeddingProvider, cfg.Pipeline.EmbedBatchSize, cfg.Pipeline.EmbedWorkers)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	retryingLLM := llm.NewRetryingProvider(llmProvider, cfg.Ai.LLMMaxAttempts)
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	var natsPub *pktNats.Publisher
	if cfg.App.NatsEnabled {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisEnabled {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub. Without Redis it still fans out to local clients.
	realtimeLogger := logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	hub := realtime.NewHub(rdb, realtimeLogger)
	go hub.Run()

	// 5. Services
	chunkRepo := implementation.NewChunkRepository(db)
	queryCache := memory.NewQueryEmbeddingCache()
	retrievalService := service.NewRetrievalService(chunkRepo, gateway, queryCache, sysLogger)

	publisherService := service.NewPublisherService(cfg.Pipeline.ProcessTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Pipeline.ProcessTopic,
		uowFactory,
		gateway,
		cfg.Pipeline,
		natsPub,
		hub,
		sysLogger,
	)

	scopeService := service.NewScopeService(uowFactory, retrievalService, sysLogger)
	documentService := service.NewDocumentService(uowFactory, publisherService, sysLogger)
	synthesisService := service.NewSynthesisService(
		uowFactory,
		retrievalService,
		retryingLLM,
		gateway,
		cfg.Pipeline,
		cfg.Scoring,
		natsPub,
		sysLogger,
	)
	scoringService := service.NewScoringService(uowFactory, gateway, natsPub, sysLogger)
	validationService := service.NewValidationService(uowFactory, gateway, cfg.Scoring, natsPub, sysLogger)
	analyticsService := service.NewAnalyticsService(uowFactory, sysLogger)
	completionService := service.NewCompletionService(retrievalService, retryingLLM, cfg.Pipeline, sysLogger)

	realtimeHandler := handler.NewRealtimeHandler(hub, realtimeLogger)

	// 6. Controllers
	return &Container{
		ScopeController:      controller.NewScopeController(scopeService),
		DocumentController:   controller.NewDocumentController(documentService),
		PersonaSetController: controller.NewPersonaSetController(synthesisService, scoringService, validationService),
		AnalyticsController:  controller.NewAnalyticsController(analyticsService),
		CompletionController: controller.NewCompletionController(completionService),

		ConsumerService: consumerService,

		RealtimeHandler: realtimeHandler,
		RealtimeHub:     hub,
	}
}
