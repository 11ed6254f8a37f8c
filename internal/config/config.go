package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Session store backends selectable via SESSION_BACKEND.
const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendDynamo = "dynamo"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// DataDir is the root for flat-file persistence (sessions, booking log).
	DataDir        string
	SessionBackend string
	BookingLogPath string

	// Optional Postgres mirror for booking records.
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	SessionsTable       string

	// InboundQueueURL selects the SQS inbound queue when set; empty means
	// the in-memory queue.
	InboundQueueURL    string
	WorkerCount        int
	ReceiveWaitSeconds int
	ReceiveBatchSize   int

	TypingEnabled bool
	TypingDelay   time.Duration

	// WhatsAppStorePath is the sqlite path for the whatsmeow device store.
	WhatsAppStorePath string
}

// Load reads configuration from environment variables
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir:        dataDir,
		SessionBackend: strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", SessionBackendFile))),
		BookingLogPath: getEnv("BOOKING_LOG_PATH", filepath.Join(dataDir, "agendamentos.jsonl")),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SessionsTable:       getEnv("SESSIONS_TABLE", "conversation_sessions"),

		InboundQueueURL:    getEnv("INBOUND_QUEUE_URL", ""),
		WorkerCount:        getEnvAsInt("WORKER_COUNT", 1),
		ReceiveWaitSeconds: getEnvAsInt("QUEUE_WAIT_SECONDS", 2),
		ReceiveBatchSize:   getEnvAsInt("QUEUE_BATCH_SIZE", 1),

		TypingEnabled: getEnvAsBool("TYPING_ENABLED", true),
		TypingDelay:   getEnvAsDuration("TYPING_DELAY", 3*time.Second),

		WhatsAppStorePath: getEnv("WHATSAPP_STORE_PATH", filepath.Join(dataDir, "whatsapp.db")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
