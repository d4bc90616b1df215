package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-chat-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-chat-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-chat-assistant/internal/webchat"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *handlers.ChatHandler
	WebChat            *webchat.Handler
	HealthHandler      http.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	ClinicianJWTSecret string
	// RateLimiter guards the chat routes. Nil disables limiting.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		if cfg.HealthHandler != nil {
			public.Method(http.MethodGet, "/health", cfg.HealthHandler)
		} else {
			public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			})
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/v1/chat", func(chat chi.Router) {
		if cfg.RateLimiter != nil {
			chat.Use(cfg.RateLimiter.Middleware)
		}
		chat.Use(httpmiddleware.ClinicianJWT(cfg.ClinicianJWTSecret))
		if cfg.ChatHandler != nil {
			chat.Post("/turns", cfg.ChatHandler.Turn)
			chat.Get("/greeting", cfg.ChatHandler.Greeting)
		}
		if cfg.WebChat != nil {
			chat.Get("/ws", cfg.WebChat.HandleWebSocket)
		}
	})

	return r
}
