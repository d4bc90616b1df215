package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-chat-assistant/cmd/mainconfig"
	"github.com/wolfman30/clinic-chat-assistant/internal/api/router"
	"github.com/wolfman30/clinic-chat-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-chat-assistant/internal/config"
	"github.com/wolfman30/clinic-chat-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-chat-assistant/internal/http/middleware"
	"github.com/wolfman30/clinic-chat-assistant/internal/llm"
	"github.com/wolfman30/clinic-chat-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-chat-assistant/internal/webchat"
	"github.com/wolfman30/clinic-chat-assistant/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic chat assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := setupApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler http.Handler
	data    *bootstrap.DataLayer
	stop    chan struct{}
}

func (a *app) Close() {
	close(a.stop)
	a.data.Close()
}

// setupMetrics builds a private registry with the runtime collectors and the
// assistant's counters.
func setupMetrics() (http.Handler, *metrics.AssistantMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewAssistantMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func setupModel(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	var bedrock llm.ConverseAPI
	if mainconfig.UsesBedrock(cfg) {
		client, err := mainconfig.NewBedrockRuntime(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bedrock runtime: %w", err)
		}
		bedrock = client
	}
	return bootstrap.BuildLLMClient(ctx, cfg, bedrock, logger)
}

func setupApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	profile, err := cfg.Profile()
	if err != nil {
		return nil, fmt.Errorf("clinic profile: %w", err)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	data, err := bootstrap.BuildDataLayer(ctx, cfg, redisClient, logger)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}

	model, err := setupModel(ctx, cfg, logger)
	if err != nil {
		data.Close()
		return nil, err
	}

	metricsHandler, assistantMetrics := setupMetrics()
	pipeline, err := bootstrap.BuildPipeline(cfg, data.Store, profile, model, assistantMetrics, logger)
	if err != nil {
		data.Close()
		return nil, err
	}

	stopSweep := make(chan struct{})
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(5*time.Minute, stopSweep)

	handler := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(pipeline, logger),
		WebChat:            webchat.NewHandler(pipeline, cfg.CORSAllowedOrigins, logger),
		HealthHandler:      handlers.NewHealthHandler(data, model, cfg.LLMProbeTimeout, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ClinicianJWTSecret: cfg.ClinicianJWTSecret,
		RateLimiter:        limiter,
	})
	return &app{handler: handler, data: data, stop: stopSweep}, nil
}
