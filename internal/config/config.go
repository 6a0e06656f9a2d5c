package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Lex bot identity used by the chat surfaces
	LexBotID      string
	LexBotAliasID string
	LexLocaleID   string

	// Cognito identity pool for unauthenticated widget credentials
	IdentityPoolID string

	// DynamoDB user memory
	UserDataTable string

	// Published course/review data
	CourseDetailsURL string
	ProfDetailsURL   string
	RawReviewsURL    string
	CatalogBucket    string
	CatalogKey       string
	ReviewsKey       string

	// Ingest pipeline
	IngestQueueURL  string
	UseMemoryQueue  bool
	WorkerCount     int
	RefreshInterval time.Duration

	// Redis (caches + chat transcripts)
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	CatalogCacheTTL time.Duration

	// Gateway
	CORSAllowedOrigins []string
	HistoryLimit       int
	MessageRatePerSec  float64
	MessageBurst       int

	// Optional follow-up nudges appended to fulfillment replies
	SuggestFollowUps bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		LexBotID:      getEnv("LEX_BOT_ID", ""),
		LexBotAliasID: getEnv("LEX_BOT_ALIAS_ID", ""),
		LexLocaleID:   getEnv("LEX_LOCALE_ID", "en_US"),

		IdentityPoolID: getEnv("COGNITO_IDENTITY_POOL_ID", ""),

		UserDataTable: getEnv("USER_DATA_TABLE", "LexBotUserData"),

		CourseDetailsURL: getEnv("COURSE_DETAILS", ""),
		ProfDetailsURL:   getEnv("PROF_DETAILS", ""),
		RawReviewsURL:    getEnv("RAW_REVIEWS_URL", ""),
		CatalogBucket:    getEnv("CATALOG_BUCKET", ""),
		CatalogKey:       getEnv("CATALOG_KEY", "courses_output.json"),
		ReviewsKey:       getEnv("REVIEWS_KEY", "prof_reviews.json"),

		IngestQueueURL:  getEnv("INGEST_QUEUE_URL", ""),
		UseMemoryQueue:  getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:     getEnvAsInt("WORKER_COUNT", 2),
		RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 6*time.Hour),

		RedisAddr:       getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 15*time.Minute),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		HistoryLimit:       getEnvAsInt("CHAT_HISTORY_LIMIT", 50),
		MessageRatePerSec:  getEnvAsFloat("CHAT_RATE_PER_SECOND", 2),
		MessageBurst:       getEnvAsInt("CHAT_RATE_BURST", 5),

		SuggestFollowUps: getEnvAsBool("SUGGEST_FOLLOWUPS", false),
	}
}

// ValidateLex checks that the fields every Lex-facing binary needs are set.
func (c *Config) ValidateLex() error {
	if c.LexBotID == "" {
		return fmt.Errorf("config: LEX_BOT_ID is required")
	}
	if c.LexBotAliasID == "" {
		return fmt.Errorf("config: LEX_BOT_ALIAS_ID is required")
	}
	if c.LexLocaleID == "" {
		return fmt.Errorf("config: LEX_LOCALE_ID is required")
	}
	return nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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
