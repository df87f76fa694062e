package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tanabbah/internal/api"
	"tanabbah/internal/api/handlers"
	"tanabbah/internal/config"
	"tanabbah/internal/domain/services"
	"tanabbah/internal/domain/services/ai"
	"tanabbah/internal/infrastructure/cache"
	"tanabbah/internal/ml"
	"tanabbah/internal/streaming"
	"tanabbah/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting Tanabbah")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; the service degrades to uncached, unthrottled mode
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
		}
	}
	defer func() {
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Streaming infrastructure
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without real-time streaming")
		} else {
			log.Info().Str("url", cfg.NATS.URL).Msg("connected to NATS")
		}
	}

	eventBus := streaming.NewEventBus(natsPublisher, log)
	log.Info().Bool("nats_enabled", natsPublisher != nil).Msg("event bus initialized")

	wsHub := streaming.NewWebSocketHub(log)
	go wsHub.Run(ctx)

	// The hub consumes detections off the bus like any other subscriber
	events, unsubscribe := eventBus.Subscribe(ctx, &streaming.Subscription{})
	defer unsubscribe()
	go func() {
		for event := range events {
			wsHub.BroadcastEvent(event)
		}
	}()

	publisher := streaming.NewPublisher(eventBus)

	// Classifier model is optional; the heuristic covers its absence
	var forest *ml.Forest
	if cfg.Classifier.ModelPath != "" {
		forest, err = ml.Load(cfg.Classifier.ModelPath, log)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Classifier.ModelPath).Msg("failed to load classifier model, using heuristic scoring")
		} else {
			log.Info().Str("path", cfg.Classifier.ModelPath).Msg("classifier model loaded")
		}
	}

	// Domain services
	trust := services.NewTrustRegistry(cfg.Trust.Domains)
	extractor := services.NewURLExtractor()
	features := services.NewFeatureExtractor(log)
	classifier := services.NewURLClassifier(features, forest, log)

	var llmClient *ai.LLMClient
	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		llmClient = ai.NewLLMClient(ai.LLMConfig{
			Provider:    cfg.LLM.Provider,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, log)
		log.Info().Str("provider", cfg.LLM.Provider).Msg("LLM client initialized")
	}

	heuristic := ai.NewContextHeuristic(trust, cfg.Analysis.PhishingThreshold)
	contextAnalyzer := ai.NewContextAnalyzer(llmClient, heuristic, trust, log)
	fusion := services.NewFusionEngine(trust, cfg.Analysis, log)
	analyzer := services.NewAnalyzer(extractor, classifier, contextAnalyzer, fusion, log)

	log.Info().
		Bool("model_loaded", classifier.ModelLoaded()).
		Bool("llm_enabled", llmClient != nil).
		Int("trusted_domains", len(trust.Domains())).
		Msg("analysis pipeline initialized")

	// Handlers and router
	deps := handlers.Dependencies{
		Analyzer:   analyzer,
		Classifier: classifier,
		Trust:      trust,
		Cache:      redisCache,
		Publisher:  publisher,
		WSHub:      wsHub,
		EventBus:   eventBus,
		LLMEnabled: llmClient != nil,
		Config:     *cfg,
		Logger:     log,
	}
	h := handlers.NewHandlers(deps)

	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	eventBus.Close()

	log.Info().Msg("shutdown complete")
}
