package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"citizen-helpdesk-be/internal/config"
	"citizen-helpdesk-be/internal/controller"
	"citizen-helpdesk-be/internal/pkg/logger"
	"citizen-helpdesk-be/internal/repository/memory"
	"citizen-helpdesk-be/internal/repository/unitofwork"
	"citizen-helpdesk-be/internal/search"
	"citizen-helpdesk-be/internal/service"
	"citizen-helpdesk-be/pkg/embedding"
	"citizen-helpdesk-be/pkg/llm/factory"
	"citizen-helpdesk-be/pkg/mode"
	"citizen-helpdesk-be/pkg/rag/answer"
	"citizen-helpdesk-be/pkg/rag/history"
	"citizen-helpdesk-be/pkg/rag/pipeline"
	"citizen-helpdesk-be/pkg/rag/rephrase"
	"citizen-helpdesk-be/pkg/rag/retrieval"
	"citizen-helpdesk-be/pkg/suggestion"

	pktNats "citizen-helpdesk-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistController controller.IAssistController
	DebugController  controller.IDebugController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	traceLogger := initTraceLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
	)
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.OllamaModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	defaultMode, err := mode.Parse(cfg.Assist.DefaultMode)
	if err != nil {
		log.Printf("[WARN] Invalid default mode %q, falling back to hitl", cfg.Assist.DefaultMode)
		defaultMode = mode.HITL
	}

	var modeStore mode.Store
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Mode store is in-memory", err)
		modeStore = mode.NewMemoryStore(defaultMode)
	} else {
		modeStore = mode.NewRedisStore(rdb, defaultMode, traceLogger)
	}

	// 5. Answer Pipeline
	rephraseModel := cfg.Ai.RephraseModel
	if rephraseModel == "" {
		rephraseModel = cfg.Ai.LLMModel
	}
	rephraser := rephrase.NewRephraser(llmProvider, rephrase.Config{
		Skip:             cfg.Assist.SkipRephrase,
		MinHistoryLength: cfg.Assist.MinHistoryLength,
		Model:            rephraseModel,
		FailureMode:      cfg.Assist.RephraseFailureMode,
	}, traceLogger)

	searcher := search.NewVectorSearcher(uowFactory, embeddingProvider, traceLogger)
	retriever := retrieval.NewRetriever(searcher, traceLogger)

	generator := answer.NewGenerator(llmProvider, answer.Config{
		Model:   cfg.Ai.LLMModel,
		Timeout: time.Duration(cfg.Assist.GenerationTimeoutMs) * time.Millisecond,
	}, traceLogger)

	orchestrator := pipeline.NewOrchestrator(rephraser, retriever, generator, pipeline.Config{
		TopK: cfg.Assist.TopK,
	}, traceLogger)

	// 6. Suggestion Lifecycle
	stateRepo := memory.NewSuggestionStateRepository()

	var eventPublisher suggestion.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	manager := suggestion.NewManager(stateRepo, orchestrator, modeStore, eventPublisher, suggestion.Config{
		PollBaseDelay:       time.Duration(cfg.Assist.PollBaseDelayMs) * time.Millisecond,
		PollFactor:          cfg.Assist.PollFactor,
		PollMaxDelay:        time.Duration(cfg.Assist.PollMaxDelayMs) * time.Millisecond,
		PollMaxAttempts:     cfg.Assist.PollMaxAttempts,
		RecoveryWindow:      time.Duration(cfg.Assist.RecoveryWindowSec) * time.Second,
		RecoveryMaxAttempts: cfg.Assist.RecoveryMaxAttempts,
	}, traceLogger)

	historyLoader := history.NewLoader(uowFactory)

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Keys.CustomerMessageTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.CustomerMessageTopic,
		historyLoader,
		manager,
	)

	assistService := service.NewAssistService(
		uowFactory,
		orchestrator,
		manager,
		historyLoader,
		modeStore,
		publisherService,
		eventPublisher,
		sysLogger,
	)

	return &Container{
		AssistController: controller.NewAssistController(assistService),
		DebugController:  controller.NewDebugController(sysLogger),

		ConsumerService: consumerService,
	}
}

// initTraceLogger opens the file-backed pipeline trace log. Falls back to
// stdout when the logs directory cannot be created.
func initTraceLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "assist_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[ASSIST] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
