package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports store and model availability. The assistant keeps
// answering when either is down, so the endpoint only returns 503 when both
// are.
type HealthHandler struct {
	store   Pinger
	model   llm.Client
	timeout time.Duration
	logger  *logging.Logger
}

func NewHealthHandler(store Pinger, model llm.Client, timeout time.Duration, logger *logging.Logger) *HealthHandler {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{store: store, model: model, timeout: timeout, logger: logger}
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Model  string `json:"model"`
}

const (
	componentOK          = "ok"
	componentUnavailable = "unavailable"
	componentDisabled    = "disabled"
)

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Store: componentDisabled, Model: componentDisabled}
	if h.store != nil {
		resp.Store = componentOK
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("health: store ping failed", "error", err)
			resp.Store = componentUnavailable
		}
	}
	if h.model != nil {
		resp.Model = componentOK
		if err := llm.Probe(ctx, h.model); err != nil {
			h.logger.Warn("health: model probe failed", "error", err)
			resp.Model = componentUnavailable
		}
	}

	status := http.StatusOK
	switch {
	case resp.Store == componentUnavailable && resp.Model == componentUnavailable:
		resp.Status = "down"
		status = http.StatusServiceUnavailable
	case resp.Store == componentUnavailable || resp.Model == componentUnavailable:
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}
