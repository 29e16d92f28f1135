package config

import (
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

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Kluster delivery API
	KlusterAPIURL          string
	KlusterBotID           string
	KlusterAPIToken        string
	KlusterTimeout         time.Duration
	KlusterRetryAttempts   int
	KlusterRetryBaseDelay  time.Duration
	KlusterMaxIdleConns    int
	KlusterIdleConnTimeout time.Duration

	DefaultMedium string

	ProcessingLockTTL time.Duration
	ValidationLockTTL time.Duration

	StatsAPIURL  string
	TriviaAPIURL string
	QuizStateTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		KlusterAPIURL:          strings.TrimRight(getEnv("KLUSTER_API_URL", "https://v1-api.swiftchat.ai/api"), "/"),
		KlusterBotID:           getEnv("KLUSTER_BOT_ID", ""),
		KlusterAPIToken:        getEnv("KLUSTER_API_TOKEN", ""),
		KlusterTimeout:         getEnvAsDuration("KLUSTER_TIMEOUT", 300*time.Second),
		KlusterRetryAttempts:   getEnvAsInt("KLUSTER_RETRY_ATTEMPTS", 3),
		KlusterRetryBaseDelay:  getEnvAsDuration("KLUSTER_RETRY_BASE_DELAY", 500*time.Millisecond),
		KlusterMaxIdleConns:    getEnvAsInt("KLUSTER_MAX_IDLE_CONNS", 50),
		KlusterIdleConnTimeout: getEnvAsDuration("KLUSTER_IDLE_CONN_TIMEOUT", 90*time.Second),

		DefaultMedium: getEnv("DEFAULT_MEDIUM", "english"),

		ProcessingLockTTL: getEnvAsDuration("PROCESSING_LOCK_TTL", 60*time.Second),
		ValidationLockTTL: getEnvAsDuration("VALIDATION_LOCK_TTL", 5*time.Minute),

		StatsAPIURL:  getEnv("STATS_API_URL", ""),
		TriviaAPIURL: getEnv("TRIVIA_API_URL", "https://opentdb.com/api.php"),
		QuizStateTTL: getEnvAsDuration("QUIZ_STATE_TTL", 30*time.Minute),
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
