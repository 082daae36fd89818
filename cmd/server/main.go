package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zombar/easyread/internal/api"
	"github.com/zombar/easyread/internal/app"
	"github.com/zombar/easyread/internal/metrics"
	"github.com/zombar/easyread/internal/session"
	"github.com/zombar/easyread/internal/tracing"
	"github.com/zombar/easyread/pkg/logging"
)

const serviceName = "easyread"

type config struct {
	port string
	app  app.Config
}

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("easyread service initializing", "version", "1.0.0")

	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	cfg := parseConfig(flag.CommandLine, os.Args[1:])

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := newServerHandler(cfg, logger, reg)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // provider timeouts run back to back
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("easyread service starting",
			"port", cfg.port,
			"summarizer", cfg.app.Summarizer,
			"openai_enabled", cfg.app.OpenAIAPIKey != "",
			"provider_timeout", cfg.app.ProviderTimeout,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// parseConfig reads flags from args, each defaulting to its environment variable
func parseConfig(fs *flag.FlagSet, args []string) config {
	defaults := app.DefaultConfig()
	var cfg config

	fs.StringVar(&cfg.port, "port", getEnv("PORT", "8080"), "Server port (env: PORT)")
	fs.StringVar(&cfg.app.Summarizer, "summarizer", getEnv("SUMMARIZER", defaults.Summarizer), "Remote summarizer: huggingface, ollama or none (env: SUMMARIZER)")
	fs.StringVar(&cfg.app.HuggingFaceURL, "hf-url", getEnv("HF_URL", ""), "Hugging Face inference URL (env: HF_URL)")
	fs.StringVar(&cfg.app.HuggingFaceToken, "hf-token", getEnv("HF_TOKEN", ""), "Hugging Face API token (env: HF_TOKEN)")
	fs.StringVar(&cfg.app.OllamaURL, "ollama-url", getEnv("OLLAMA_URL", "http://localhost:11434"), "Ollama API URL (env: OLLAMA_URL)")
	fs.StringVar(&cfg.app.OllamaModel, "ollama-model", getEnv("OLLAMA_MODEL", defaults.OllamaModel), "Ollama model to use (env: OLLAMA_MODEL)")
	fs.StringVar(&cfg.app.MyMemoryURL, "mymemory-url", getEnv("MYMEMORY_URL", ""), "MyMemory endpoint (env: MYMEMORY_URL)")
	fs.StringVar(&cfg.app.LibreTranslateURL, "libretranslate-url", getEnv("LIBRETRANSLATE_URL", ""), "LibreTranslate endpoint (env: LIBRETRANSLATE_URL)")
	fs.StringVar(&cfg.app.LibreTranslateAPIKey, "libretranslate-api-key", getEnv("LIBRETRANSLATE_API_KEY", ""), "LibreTranslate API key (env: LIBRETRANSLATE_API_KEY)")
	fs.StringVar(&cfg.app.OpenAIAPIKey, "openai-api-key", getEnv("OPENAI_API_KEY", ""), "Enables the OpenAI translator (env: OPENAI_API_KEY)")
	fs.StringVar(&cfg.app.OpenAIBaseURL, "openai-base-url", getEnv("OPENAI_BASE_URL", ""), "OpenAI compatible API URL (env: OPENAI_BASE_URL)")
	fs.StringVar(&cfg.app.OpenAIModel, "openai-model", getEnv("OPENAI_MODEL", ""), "OpenAI model (env: OPENAI_MODEL)")
	fs.DurationVar(&cfg.app.ProviderTimeout, "provider-timeout", getEnvDuration("PROVIDER_TIMEOUT", defaults.ProviderTimeout), "Timeout of each remote call (env: PROVIDER_TIMEOUT)")
	fs.DurationVar(&cfg.app.BreakerCooldown, "breaker-cooldown", getEnvDuration("BREAKER_COOLDOWN", defaults.BreakerCooldown), "How long a failing provider is skipped (env: BREAKER_COOLDOWN)")
	failures := fs.Uint("breaker-failures", getEnvUint("BREAKER_FAILURES", uint(defaults.BreakerFailures)), "Consecutive failures before a provider is skipped (env: BREAKER_FAILURES)")
	fs.BoolVar(&cfg.app.DisableBreakers, "disable-breakers", getEnvBool("DISABLE_BREAKERS", false), "Always call every provider (env: DISABLE_BREAKERS)")

	fs.Parse(args)
	cfg.app.BreakerFailures = uint32(*failures)
	return cfg
}

// newServerHandler wires the services into the HTTP handler and its
// middleware chain: request id -> HTTP logging -> tracing -> handlers
func newServerHandler(cfg config, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, error) {
	services, err := app.New(cfg.app, logger, metrics.New(serviceName, reg))
	if err != nil {
		return nil, err
	}
	logger.Info("providers configured",
		"summary_providers", services.SummaryProviders,
		"translation_providers", services.TranslationProviders,
	)

	apiHandler := api.NewHandler(api.Config{
		Engine:     services.Engine,
		Translator: services.Translator,
		Slot:       session.NewSlot(),
		Gatherer:   reg,
		Logger:     logger,
	})

	return logging.RequestIDMiddleware(
		logging.HTTPLoggingMiddleware(logger)(
			tracing.HTTPMiddleware(serviceName)(apiHandler),
		),
	), nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDuration retrieves a duration such as "15s" or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("ignoring invalid duration", "key", key, "value", value)
	}
	return defaultValue
}

// getEnvUint retrieves an unsigned integer or returns a default value
func getEnvUint(key string, defaultValue uint) uint {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint(n)
		}
		slog.Warn("ignoring invalid number", "key", key, "value", value)
	}
	return defaultValue
}
