package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"healthbridge-be/internal/apperror"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Ai        AIConfig
	Agent     AgentConfig
	Knowledge KnowledgeConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RelayLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret string
}

type AIConfig struct {
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string
	GeminiAPIKey      string
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	RequestTimeout    time.Duration // per upstream model call
}

type AgentConfig struct {
	Mode            string // "local" or "remote"
	RemoteURL       string // turn endpoint of an externally hosted agent
	TurnTimeout     time.Duration
	MaxHistoryTurns int
}

type KnowledgeConfig struct {
	DocumentDir  string
	Collection   string
	RebuildIndex bool
	IngestTopic  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RelayLogFilePath:   getEnv("RELAY_LOG_FILE_PATH", "logs/relay.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.0-flash"),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			RequestTimeout:    getEnvAsDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		},
		Agent: AgentConfig{
			Mode:            getEnv("AGENT_MODE", "local"),
			RemoteURL:       getEnv("AGENT_REMOTE_URL", ""),
			TurnTimeout:     getEnvAsDuration("TURN_TIMEOUT", 120*time.Second),
			MaxHistoryTurns: getEnvAsInt("MAX_HISTORY_TURNS", 50),
		},
		Knowledge: KnowledgeConfig{
			DocumentDir:  getEnv("DOCUMENT_DIR", "document"),
			Collection:   getEnv("KNOWLEDGE_COLLECTION", "health_documents"),
			RebuildIndex: getEnvAsBool("REBUILD_INDEX", false),
			IngestTopic:  getEnv("INGEST_TOPIC_NAME", "INGEST_DOCUMENTS"),
		},
	}
}

// Validate checks settings that have no usable fallback. A failure here is
// fatal at startup; there is no request-time recovery for these.
func (c *Config) Validate() error {
	if c.Database.Connection == "" {
		return apperror.Configuration("DB_CONNECTION_STRING is required")
	}
	if c.Auth.JWTSecret == "" {
		return apperror.Configuration("JWT_SECRET is required")
	}
	if c.Agent.Mode == "remote" && c.Agent.RemoteURL == "" {
		return apperror.Configuration("AGENT_REMOTE_URL is required when AGENT_MODE=remote")
	}
	if c.Ai.LLMProvider == "gemini" && c.Ai.GeminiAPIKey == "" {
		return apperror.Configuration("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
	}
	if c.Ai.EmbeddingProvider == "gemini" && c.Ai.GeminiAPIKey == "" {
		return apperror.Configuration("GEMINI_API_KEY is required when EMBEDDING_PROVIDER=gemini")
	}
	return nil
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
