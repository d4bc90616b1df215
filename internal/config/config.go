package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	LookupCacheTTL time.Duration

	// External model providers
	LLMProvider         string
	LLMFallbackProvider string
	GroqAPIKey          string
	GroqBaseURL         string
	GroqModel           string
	OpenAIAPIKey        string
	OpenAIModel         string
	GeminiAPIKey        string
	GeminiModel         string
	BedrockModelID      string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Resolution chain budgets
	LLMTimeout      time.Duration
	LLMProbeTimeout time.Duration
	LookupTimeout   time.Duration
	LLMMaxTokens    int
	LLMTemperature  float64
	LLMHistoryTurns int

	// HTTP surface
	ClinicianJWTSecret string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Clinic profile
	ClinicProfilePath string
	ClinicTimezone    string
	DailyCapacity     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		LookupCacheTTL: getEnvAsDuration("LOOKUP_CACHE_TTL", 5*time.Minute),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "groq"))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		GroqAPIKey:          getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:         getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:           getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		LLMTimeout:      getEnvAsDuration("LLM_TIMEOUT", 10*time.Second),
		LLMProbeTimeout: getEnvAsDuration("LLM_PROBE_TIMEOUT", 3*time.Second),
		LookupTimeout:   getEnvAsDuration("LOOKUP_TIMEOUT", 3*time.Second),
		LLMMaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 200),
		LLMTemperature:  getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMHistoryTurns: getEnvAsInt("LLM_HISTORY_TURNS", 5),

		ClinicianJWTSecret: getEnv("CLINICIAN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		ClinicProfilePath: getEnv("CLINIC_PROFILE_PATH", ""),
		ClinicTimezone:    getEnv("CLINIC_TIMEZONE", ""),
		DailyCapacity:     getEnvAsInt("DAILY_CAPACITY", 0),
	}
}

// Profile loads the clinic profile and applies the environment overrides
// for timezone and daily capacity.
func (c *Config) Profile() (*clinic.Profile, error) {
	p, err := clinic.LoadProfile(c.ClinicProfilePath)
	if err != nil {
		return nil, err
	}
	if c.ClinicTimezone != "" {
		p.Timezone = c.ClinicTimezone
	}
	if c.DailyCapacity > 0 {
		p.DailyCapacity = c.DailyCapacity
	}
	return p, nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
