package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tanabbah/internal/domain/services"
	"tanabbah/internal/infrastructure/cache"
	"tanabbah/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cache      *cache.RedisCache
	classifier *services.URLClassifier
	llmEnabled bool
	logger     *logger.Logger
	startTime  time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(c *cache.RedisCache, classifier *services.URLClassifier, llmEnabled bool, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		cache:      c,
		classifier: classifier,
		llmEnabled: llmEnabled,
		logger:     log.WithComponent("health"),
		startTime:  time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Uptime      string            `json:"uptime"`
	Timestamp   string            `json:"timestamp"`
	ModelLoaded bool              `json:"model_loaded"`
	LLMEnabled  bool              `json:"llm_enabled"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:      "healthy",
		Version:     "2.1.0",
		Uptime:      time.Since(h.startTime).String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		ModelLoaded: h.classifier.ModelLoaded(),
		LLMEnabled:  h.llmEnabled,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Ready handles GET /ready - checks all dependencies
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := http.StatusOK
	overallStatus := "ready"

	// Check Redis
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			overallStatus = "not ready"
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	// The classifier always works; the heuristic covers a missing model
	if h.classifier.ModelLoaded() {
		checks["classifier"] = "model"
	} else {
		checks["classifier"] = "heuristic"
	}

	response := HealthResponse{
		Status:      overallStatus,
		Version:     "2.1.0",
		Uptime:      time.Since(h.startTime).String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		ModelLoaded: h.classifier.ModelLoaded(),
		LLMEnabled:  h.llmEnabled,
		Checks:      checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
