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
	Assist   AssistConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	HuggingFace          string
	CustomerMessageTopic string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama"
	OllamaBaseURL     string
	OllamaModel       string // embedding model
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	RephraseModel     string // defaults to LLMModel when empty
}

// AssistConfig tunes the answer pipeline and suggestion lifecycle.
type AssistConfig struct {
	TopK                int
	SkipRephrase        bool
	MinHistoryLength    int
	RephraseFailureMode string // "fallback" or "degrade"
	GenerationTimeoutMs int

	PollBaseDelayMs     int
	PollFactor          float64
	PollMaxDelayMs      int
	PollMaxAttempts     int
	RecoveryWindowSec   int
	RecoveryMaxAttempts int

	DefaultMode string // "hitl", "autopilot", "off"
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			HuggingFace:          getEnv("HUGGINGFACE_API_KEY", ""),
			CustomerMessageTopic: getEnv("CUSTOMER_MESSAGE_TOPIC_NAME", "CUSTOMER_MESSAGE"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			RephraseModel:     getEnv("REPHRASE_MODEL", ""),
		},
		Assist: AssistConfig{
			TopK:                getEnvAsInt("ASSIST_TOP_K", 3),
			SkipRephrase:        getEnvAsBool("ASSIST_SKIP_REPHRASE", false),
			MinHistoryLength:    getEnvAsInt("ASSIST_MIN_HISTORY_LENGTH", 1),
			RephraseFailureMode: getEnv("ASSIST_REPHRASE_FAILURE_MODE", "fallback"),
			GenerationTimeoutMs: getEnvAsInt("ASSIST_GENERATION_TIMEOUT_MS", 60000),
			PollBaseDelayMs:     getEnvAsInt("ASSIST_POLL_BASE_DELAY_MS", 200),
			PollFactor:          getEnvAsFloat("ASSIST_POLL_FACTOR", 2.0),
			PollMaxDelayMs:      getEnvAsInt("ASSIST_POLL_MAX_DELAY_MS", 2000),
			PollMaxAttempts:     getEnvAsInt("ASSIST_POLL_MAX_ATTEMPTS", 8),
			RecoveryWindowSec:   getEnvAsInt("ASSIST_RECOVERY_WINDOW_SEC", 90),
			RecoveryMaxAttempts: getEnvAsInt("ASSIST_RECOVERY_MAX_ATTEMPTS", 3),
			DefaultMode:         getEnv("ASSIST_DEFAULT_MODE", "hitl"),
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
