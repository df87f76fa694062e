package handlers

import (
	"tanabbah/internal/config"
	"tanabbah/internal/domain/services"
	"tanabbah/internal/infrastructure/cache"
	"tanabbah/internal/streaming"
	"tanabbah/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health    *HealthHandler
	Analyze   *AnalyzeHandler
	Report    *ReportHandler
	Patterns  *PatternsHandler
	Streaming *StreamingHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Analyzer   *services.Analyzer
	Classifier *services.URLClassifier
	Trust      *services.TrustRegistry
	Cache      *cache.RedisCache
	Publisher  *streaming.Publisher
	WSHub      *streaming.WebSocketHub
	EventBus   *streaming.EventBus
	LLMEnabled bool
	Config     config.Config
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Cache, deps.Classifier, deps.LLMEnabled, deps.Logger),
		Analyze:   NewAnalyzeHandler(deps.Analyzer, deps.Cache, deps.Publisher, deps.Config.Redis, deps.Logger),
		Report:    NewReportHandler(deps.Cache, deps.Publisher, deps.Logger),
		Patterns:  NewPatternsHandler(deps.Trust, deps.Logger),
		Streaming: NewStreamingHandler(deps.WSHub, deps.EventBus, deps.Logger),
	}
}
