package bootstrap

import (
	"context"
	"fmt"
	"strings"

	appconfig "github.com/wolfman30/clinic-chat-assistant/internal/config"
	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

// BuildLLMClient wires the configured provider and, when set, a fallback
// provider behind it. A nil client with a nil error means no provider is
// usable; the assistant then answers from lookups and canned text only.
// bedrock may be nil unless one of the providers is "bedrock".
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, bedrock llm.ConverseAPI, logger *logging.Logger) (llm.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	primary, err := buildProvider(ctx, cfg.LLMProvider, cfg, bedrock, logger)
	if err != nil {
		return nil, err
	}
	var fallback llm.Client
	if name := cfg.LLMFallbackProvider; name != "" && name != cfg.LLMProvider {
		fallback, err = buildProvider(ctx, name, cfg, bedrock, logger)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case primary == nil && fallback == nil:
		logger.Warn("no LLM provider configured; model answers disabled")
		return nil, nil
	case primary == nil:
		logger.Warn("primary LLM provider not configured; using fallback only", "provider", cfg.LLMFallbackProvider)
		return fallback, nil
	case fallback == nil:
		logger.Info("using LLM provider", "provider", cfg.LLMProvider)
		return primary, nil
	}
	logger.Info("using LLM provider with fallback", "provider", cfg.LLMProvider, "fallback", cfg.LLMFallbackProvider)
	return llm.NewFallbackClient(primary, fallback, logger.Logger), nil
}

// buildProvider returns nil, nil when the provider's credentials are
// missing so a half-configured environment still starts.
func buildProvider(ctx context.Context, name string, cfg *appconfig.Config, bedrock llm.ConverseAPI, logger *logging.Logger) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "groq":
		if cfg.GroqAPIKey == "" {
			logger.Warn("GROQ_API_KEY not set; skipping groq provider")
			return nil, nil
		}
		return llm.NewOpenAIClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY not set; skipping openai provider")
			return nil, nil
		}
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, "", cfg.OpenAIModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set; skipping gemini provider")
			return nil, nil
		}
		return llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "bedrock":
		if cfg.BedrockModelID == "" || bedrock == nil {
			logger.Warn("bedrock model or runtime client missing; skipping bedrock provider")
			return nil, nil
		}
		return llm.NewBedrockClient(bedrock, cfg.BedrockModelID)
	default:
		return nil, fmt.Errorf("bootstrap: unknown LLM provider %q", name)
	}
}
