package bootstrap

import (
	"fmt"

	"healthbridge-be/internal/config"
	"healthbridge-be/internal/controller"
	"healthbridge-be/internal/model"
	"healthbridge-be/internal/pkg/logger"
	"healthbridge-be/internal/repository/implementation"
	"healthbridge-be/internal/repository/memory"
	"healthbridge-be/internal/repository/unitofwork"
	"healthbridge-be/internal/service"
	"healthbridge-be/internal/websocket"
	"healthbridge-be/pkg/agent"
	"healthbridge-be/pkg/agent/enhance"
	"healthbridge-be/pkg/agent/intent"
	"healthbridge-be/pkg/agent/remote"
	"healthbridge-be/pkg/agent/respond"
	"healthbridge-be/pkg/agent/retrieve"
	"healthbridge-be/pkg/database"
	"healthbridge-be/pkg/embedding"
	"healthbridge-be/pkg/ingest"
	llmfactory "healthbridge-be/pkg/llm/factory"
	"healthbridge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container wires every component of the application. Both binaries
// build one and pick the pieces they need.
type Container struct {
	Config      *config.Config
	Logger      logger.ILogger
	RelayLogger logger.ILogger

	DB         *gorm.DB
	UowFactory unitofwork.RepositoryFactory
	Sessions   *memory.SessionRepository

	PubSub         *gochannel.GoChannel
	NatsPublisher  *nats.Publisher
	RedisClient    *redis.Client

	Pipeline *agent.Pipeline
	Invoker  agent.Invoker

	ChatService      service.IChatService
	KnowledgeService service.IKnowledgeService
	AgentService     service.IAgentService

	Hub   *websocket.Hub
	Relay *websocket.Relay

	ChatController      controller.IChatController
	AgentController     controller.IAgentController
	KnowledgeController controller.IKnowledgeController
}

func NewContainer(cfg *config.Config) (*Container, error) {
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	relayLogger := logger.NewIsolatedLogger(cfg.App.RelayLogFilePath)

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sessions := memory.NewSessionRepository()

	llmProvider, err := llmfactory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.RequestTimeout,
	)
	if err != nil {
		return nil, err
	}

	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbedModel,
		cfg.Ai.RequestTimeout,
	)
	if err != nil {
		return nil, err
	}

	retriever := retrieve.NewRetriever(
		embeddingProvider,
		implementation.NewDocumentChunkRepository(db),
		cfg.Knowledge.Collection,
	)

	pipeline := agent.NewPipeline(
		enhance.NewEnhancer(llmProvider),
		intent.NewClassifier(llmProvider),
		retriever,
		respond.NewGenerator(llmProvider),
		appLogger,
	)

	var invoker agent.Invoker
	if cfg.Agent.Mode == "remote" {
		invoker = remote.NewClient(cfg.Agent.RemoteURL, cfg.Agent.TurnTimeout)
	} else {
		invoker = agent.NewAgent(pipeline, sessions, cfg.Agent.MaxHistoryTurns, appLogger)
	}

	// NATS and redis are optional runtime companions; the app degrades
	// to single-instance, no-events operation without them.
	natsPublisher, err := nats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		appLogger.Warn("bootstrap", "NATS unavailable, events disabled", map[string]interface{}{
			"error": err.Error(),
		})
		natsPublisher = nil
	}

	var redisClient *redis.Client
	if opts, err := redis.ParseURL(cfg.App.RedisURL); err == nil {
		redisClient = redis.NewClient(opts)
	} else {
		appLogger.Warn("bootstrap", "Redis unavailable, cross-instance fan-out disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	loader := ingest.NewLoader(appLogger)

	chatService := service.NewChatService(uowFactory)
	knowledgeService := service.NewKnowledgeService(
		pubSub,
		cfg.Knowledge.IngestTopic,
		uowFactory,
		embeddingProvider,
		loader,
		cfg.Knowledge.Collection,
		natsPublisher,
		appLogger,
	)
	agentService := service.NewAgentService(pipeline)

	hub := websocket.NewHub(redisClient, relayLogger)
	relay := websocket.NewRelay(
		hub,
		chatService,
		invoker,
		natsPublisher,
		cfg.Auth.JWTSecret,
		cfg.Agent.TurnTimeout,
		relayLogger,
	)

	return &Container{
		Config:              cfg,
		Logger:              appLogger,
		RelayLogger:         relayLogger,
		DB:                  db,
		UowFactory:          uowFactory,
		Sessions:            sessions,
		PubSub:              pubSub,
		NatsPublisher:       natsPublisher,
		RedisClient:         redisClient,
		Pipeline:            pipeline,
		Invoker:             invoker,
		ChatService:         chatService,
		KnowledgeService:    knowledgeService,
		AgentService:        agentService,
		Hub:                 hub,
		Relay:               relay,
		ChatController:      controller.NewChatController(chatService, cfg.Auth.JWTSecret),
		AgentController:     controller.NewAgentController(agentService, cfg.Auth.JWTSecret),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService, cfg),
	}, nil
}

func migrate(db *gorm.DB) error {
	// pgvector must exist before the embedding column can migrate.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.Chat{},
		&model.Message{},
		&model.DocumentChunk{},
	)
}
