package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins []string

	// Diagnostic tool settings. KubectlBin is the executable name or path;
	// KubeconfigPath is only passed to kubectl when non-empty, so the default
	// client resolution (~/.kube/config, in-cluster) still applies otherwise.
	KubectlBin     string
	KubeconfigPath string
	CommandTimeout time.Duration
	ProbeTimeout   time.Duration

	// LLM call weights differ a lot: suggestion calls are small and fast,
	// analysis calls can carry many command outputs.
	LLMSuggestTimeout  time.Duration
	LLMFollowUpTimeout time.Duration
	LLMAnalyzeTimeout  time.Duration
	LLMConnectTimeout  time.Duration

	// Investigation policy. Which classification categories are allowed a
	// follow-up round is policy, not truth; the classifier only proposes.
	FollowUpCategories []string
	HistoryWindow      int

	SessionTTL        time.Duration
	HealthCacheWindow time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		KubectlBin:     getEnv("KUBECTL_BIN", "kubectl"),
		KubeconfigPath: getEnv("KUBECONFIG_PATH", ""),
		CommandTimeout: getEnvAsDuration("COMMAND_TIMEOUT", 30*time.Second),
		ProbeTimeout:   getEnvAsDuration("PROBE_TIMEOUT", 10*time.Second),

		LLMSuggestTimeout:  getEnvAsDuration("LLM_SUGGEST_TIMEOUT", 15*time.Second),
		LLMFollowUpTimeout: getEnvAsDuration("LLM_FOLLOWUP_TIMEOUT", 20*time.Second),
		LLMAnalyzeTimeout:  getEnvAsDuration("LLM_ANALYZE_TIMEOUT", 2*time.Minute),
		LLMConnectTimeout:  getEnvAsDuration("LLM_CONNECT_TIMEOUT", 10*time.Second),

		FollowUpCategories: getEnvAsList("FOLLOWUP_CATEGORIES", []string{"moderate_investigation", "deep_analysis"}),
		HistoryWindow:      getEnvAsInt("HISTORY_WINDOW", 10),

		SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		HealthCacheWindow: getEnvAsDuration("HEALTH_CACHE_WINDOW", 30*time.Second),
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
