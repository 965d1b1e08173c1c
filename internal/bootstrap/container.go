package bootstrap

import (
	"context"
	"log"
	"time"

	"product-advisor-be/internal/config"
	"product-advisor-be/internal/controller"
	"product-advisor-be/internal/pkg/logger"
	"product-advisor-be/internal/pkg/mailer"
	"product-advisor-be/internal/repository/contract"
	"product-advisor-be/internal/repository/memory"
	"product-advisor-be/internal/repository/redisstore"
	"product-advisor-be/internal/repository/unitofwork"
	"product-advisor-be/internal/service"
	"product-advisor-be/pkg/embedding"
	"product-advisor-be/pkg/llm/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	CatalogController controller.ICatalogController
	HealthController  controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.Manager.LeadEmail,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Session Storage
	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	var sessionRepo contract.SessionRepository
	if cfg.Session.Store == "redis" {
		opt, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.Session.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionRepo = redisstore.NewSessionRepository(rdb, sessionTTL)
		log.Println("[INFO] Using Session Store: REDIS")
	} else {
		sessionRepo = memory.NewSessionRepository(sessionTTL)
		log.Println("[INFO] Using Session Store: MEMORY")
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		sysLogger,
	)

	searchService := service.NewProductSearchService(uowFactory, embeddingProvider)
	catalogService := service.NewCatalogService(uowFactory, publisherService)
	chatService := service.NewChatService(
		uowFactory,
		sessionRepo,
		searchService,
		llmProvider,
		emailService,
		cfg.Manager,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		ChatController:    controller.NewChatController(chatService),
		CatalogController: controller.NewCatalogController(catalogService),
		HealthController:  controller.NewHealthController(uowFactory, llmProvider),
		ConsumerService:   consumerService,
		Logger:            sysLogger,
	}
}

// llmBaseURL picks the endpoint for the configured provider: the Ollama
// host when running local models, otherwise whatever LLM_BASE_URL says.
func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.LLMBaseURL
}
