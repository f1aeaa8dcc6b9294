// Package config provides environment configuration for the document platform.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application. It is read once at
// process start and passed explicitly into each component.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// JWT settings
	JWTSecret string

	// Blob store settings
	BlobBackend string // "s3" or "local"
	S3Bucket    string
	S3Prefix    string
	AWSRegion   string
	LocalDir    string

	// Record store settings
	RecordBackend      string // "dynamo" or "memory"
	DocumentsTable     string
	ConversationsTable string

	// Work queue settings
	QueueBackend string // "sqs" or "nats"
	SQSQueueURL  string
	NATSURL      string
	NATSSubject  string
	NATSToken    string

	// Upload settings
	MaxUploadBytes   int64
	AllowedMIMETypes []string

	// Search service settings
	SearchEndpoint string
	SearchAPIKey   string
	SearchIndex    string
	SearchTopK     int

	// Generation service settings
	LLMProvider    string // "openai", "azure" or "anthropic"
	LLMAPIKey      string
	LLMEndpoint    string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Blob store
		BlobBackend: getEnv("BLOB_BACKEND", "s3"),
		S3Bucket:    getEnv("DOCUMENTS_BUCKET", ""),
		S3Prefix:    getEnv("DOCUMENTS_PREFIX", "uploads"),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		LocalDir:    getEnv("BLOB_LOCAL_DIR", "./data/blobs"),

		// Record store
		RecordBackend:      getEnv("RECORD_BACKEND", "dynamo"),
		DocumentsTable:     getEnv("DOCUMENTS_TABLE", "documents"),
		ConversationsTable: getEnv("CONVERSATIONS_TABLE", "conversations"),

		// Work queue
		QueueBackend: getEnv("QUEUE_BACKEND", "sqs"),
		SQSQueueURL:  getEnv("PROCESSING_QUEUE_URL", ""),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:  getEnv("NATS_SUBJECT", "documents.process"),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// Uploads
		MaxUploadBytes: getInt64Env("MAX_UPLOAD_BYTES", 25<<20),
		AllowedMIMETypes: getListEnv("ALLOWED_MIME_TYPES", []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
		}),

		// Search service
		SearchEndpoint: getEnv("SEARCH_ENDPOINT", ""),
		SearchAPIKey:   getEnv("SEARCH_API_KEY", ""),
		SearchIndex:    getEnv("SEARCH_INDEX", "documents"),
		SearchTopK:     getIntEnv("SEARCH_TOP_K", 5),

		// Generation service
		LLMProvider:    getEnv("LLM_PROVIDER", "azure"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMEndpoint:    getEnv("LLM_ENDPOINT", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o"),
		LLMTemperature: getFloatEnv("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:   getIntEnv("LLM_MAX_TOKENS", 800),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
