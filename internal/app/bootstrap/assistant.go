package bootstrap

import (
	"fmt"

	"github.com/wolfman30/clinic-chat-assistant/internal/assistant"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	appconfig "github.com/wolfman30/clinic-chat-assistant/internal/config"
	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
	"github.com/wolfman30/clinic-chat-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

// BuildPipeline wires the lookup adapter and the model into the resolution
// chain using the configured timeouts and generation settings.
func BuildPipeline(cfg *appconfig.Config, store clinicdata.Store, profile *clinic.Profile, model llm.Client, m *metrics.AssistantMetrics, logger *logging.Logger) (*assistant.Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if profile == nil {
		profile = clinic.DefaultProfile()
	}

	var looker assistant.Looker
	if store != nil {
		looker = lookup.New(store, profile,
			lookup.WithTimeout(cfg.LookupTimeout),
			lookup.WithMetrics(m),
			lookup.WithLogger(logger),
		)
	}

	opts := []assistant.Option{
		assistant.WithLogger(logger),
		assistant.WithProfile(profile),
		assistant.WithMetrics(m),
		assistant.WithTimeouts(cfg.LLMProbeTimeout, cfg.LLMTimeout),
		assistant.WithGeneration(cfg.LLMMaxTokens, cfg.LLMTemperature, cfg.LLMHistoryTurns),
	}
	if model != nil {
		opts = append(opts, assistant.WithModel(model))
	}
	return assistant.New(looker, opts...), nil
}
