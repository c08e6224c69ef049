package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/draftline/draftline/api"
	"github.com/draftline/draftline/config"
	"github.com/draftline/draftline/extract"
	"github.com/draftline/draftline/hub"
	"github.com/draftline/draftline/jira"
	"github.com/draftline/draftline/policy"
	"github.com/draftline/draftline/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting triage service",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Bool("ai_enabled", cfg.AIEnabled),
		zap.String("ollama_url", cfg.OllamaURL),
		zap.String("jira_project", cfg.JiraProjectKey))

	// Initialize the draft registry; drafts do not survive a restart.
	db := store.NewMemoryStore()
	defer db.Close()

	// Initialize the extraction chain
	var ai extract.Extractor
	if cfg.AIEnabled {
		ai = extract.NewOllama(cfg.OllamaURL, cfg.OllamaModel, cfg.LLMTimeout())
	}
	extractor := extract.NewChain(ai, logger)

	// Initialize the tracker client
	jiraClient := jira.NewClient(cfg.JiraBaseURL, cfg.JiraEmail, cfg.JiraAPIToken, cfg.JiraProjectKey)

	// Initialize the triage policy engine
	policySrc := policy.DefaultPolicy
	if cfg.TriagePolicy != "" {
		policySrc = cfg.TriagePolicy
	}
	policyEngine, err := policy.NewEngine(context.Background(), policySrc)
	if err != nil {
		logger.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	// Initialize the draft feed
	feed := hub.NewHub(logger)
	go feed.Run()

	h := api.NewHandler(db, extractor, jiraClient, policyEngine, feed, logger)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("http server started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("triage service stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
