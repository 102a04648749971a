package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	LogDir      string // empty disables file logging

	// Remote model service
	OpenAIAPIKey  string
	OpenAIBaseURL string
	RealtimeModel string
	EvalModel     string

	// Session defaults
	DefaultLanguage        string
	DefaultDurationMinutes int
	EvaluationToolName     string
	PhaseScriptPath        string // optional YAML override of the phase script
	SessionTTL             time.Duration
	TokenExpirySeconds     int

	// Upstream call policy: the token mint is retried, the final
	// evaluation call is not.
	TokenTimeout    time.Duration
	TokenMaxRetries uint64
	EvalTimeout     time.Duration

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		LogDir:      getEnv("LOG_DIR", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		RealtimeModel: getEnv("REALTIME_MODEL", "gpt-realtime"),
		EvalModel:     getEnv("EVAL_MODEL", "gpt-4o-mini"),

		DefaultLanguage:        getEnv("DEFAULT_LANGUAGE", "Spanish"),
		DefaultDurationMinutes: getEnvInt("DEFAULT_DURATION_MINUTES", 10),
		EvaluationToolName:     getEnv("EVALUATION_TOOL_NAME", "report_observation"),
		PhaseScriptPath:        getEnv("PHASE_SCRIPT_PATH", ""),
		SessionTTL:             getEnvDuration("SESSION_TTL", 2*time.Hour),
		TokenExpirySeconds:     getEnvInt("TOKEN_EXPIRY_SECONDS", 600),

		TokenTimeout:    getEnvDuration("TOKEN_TIMEOUT", 30*time.Second),
		TokenMaxRetries: uint64(getEnvInt("TOKEN_MAX_RETRIES", 2)),
		EvalTimeout:     getEnvDuration("EVAL_TIMEOUT", 90*time.Second),

		// Debug defaults to true outside prod
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
