package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LLM_PROVIDER", "LLM_TIMEOUT", "LLM_TEMPERATURE", "CORS_ALLOWED_ORIGINS", "DAILY_CAPACITY"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "groq" {
		t.Fatalf("expected groq provider by default, got %s", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 10*time.Second || cfg.LLMProbeTimeout != 3*time.Second {
		t.Fatalf("unexpected llm timeouts %s/%s", cfg.LLMTimeout, cfg.LLMProbeTimeout)
	}
	if cfg.LLMTemperature != 0.7 || cfg.LLMMaxTokens != 200 || cfg.LLMHistoryTurns != 5 {
		t.Fatalf("unexpected generation defaults %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("LLM_FALLBACK_PROVIDER", "bedrock")
	t.Setenv("LLM_TIMEOUT", "8s")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://centromedicofamiliar.com, https://admin.centromedicofamiliar.com,")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" || cfg.LLMFallbackProvider != "bedrock" {
		t.Fatalf("unexpected providers %s/%s", cfg.LLMProvider, cfg.LLMFallbackProvider)
	}
	if cfg.LLMTimeout != 8*time.Second {
		t.Fatalf("expected llm timeout override, got %s", cfg.LLMTimeout)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Fatalf("expected temperature override, got %v", cfg.LLMTemperature)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "many")
	t.Setenv("LOOKUP_TIMEOUT", "soon")
	cfg := Load()
	if cfg.LLMMaxTokens != 200 {
		t.Fatalf("expected default max tokens, got %d", cfg.LLMMaxTokens)
	}
	if cfg.LookupTimeout != 3*time.Second {
		t.Fatalf("expected default lookup timeout, got %s", cfg.LookupTimeout)
	}
}

func TestProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.yaml")
	if err := os.WriteFile(path, []byte("name: Clínica Norte\ndaily_capacity: 20\n"), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	t.Setenv("CLINIC_PROFILE_PATH", path)
	t.Setenv("DAILY_CAPACITY", "24")
	t.Setenv("CLINIC_TIMEZONE", "America/Mexico_City")

	p, err := Load().Profile()
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.Name != "Clínica Norte" {
		t.Fatalf("expected name from file, got %s", p.Name)
	}
	if p.DailyCapacity != 24 {
		t.Fatalf("expected env capacity to win, got %d", p.DailyCapacity)
	}
	if p.Timezone != "America/Mexico_City" {
		t.Fatalf("expected timezone override, got %s", p.Timezone)
	}
}
