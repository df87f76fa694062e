package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tanabbah/internal/config"
	"tanabbah/internal/domain/models"
	"tanabbah/internal/domain/services"
	"tanabbah/internal/infrastructure/cache"
	"tanabbah/internal/streaming"
	"tanabbah/pkg/logger"
)

// AnalyzeHandler handles message analysis requests
type AnalyzeHandler struct {
	analyzer  *services.Analyzer
	cache     *cache.RedisCache
	publisher *streaming.Publisher
	redisCfg  config.RedisConfig
	logger    *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer *services.Analyzer, c *cache.RedisCache, publisher *streaming.Publisher, redisCfg config.RedisConfig, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:  analyzer,
		cache:     c,
		publisher: publisher,
		redisCfg:  redisCfg,
		logger:    log.WithComponent("analyze-handler"),
	}
}

// AnalyzeRequest is the inbound payload for POST /api/v1/analyze
type AnalyzeRequest struct {
	Message   string          `json:"message"`
	EnableLLM *bool           `json:"enable_llm,omitempty"`
	Language  models.Language `json:"language,omitempty"`
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	enableContext := req.EnableLLM == nil || *req.EnableLLM
	lang := req.Language
	if lang != models.LanguageEnglish {
		lang = models.LanguageArabic
	}

	message, err := services.ValidateMessage(req.Message)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			h.respondError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid message")
		return
	}

	digest := analysisDigest(message, lang, enableContext)

	// Cache lookup serves repeated messages without re-analysis
	if h.cacheEnabled() {
		var cached models.AnalysisResult
		if err := h.cache.GetCachedAnalysis(r.Context(), digest, &cached); err == nil {
			h.logger.Debug().Str("digest", digest).Msg("analysis cache hit")
			h.respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	result, err := h.analyzer.Analyze(r.Context(), services.AnalyzeRequest{
		Message:       message,
		EnableContext: enableContext,
		Language:      lang,
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			h.respondError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		h.logger.Error().Err(err).Msg("analysis failed")
		h.respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if h.cacheEnabled() {
		if err := h.cache.CacheAnalysis(r.Context(), digest, result, h.redisCfg.ResultTTL); err != nil {
			h.logger.Warn().Err(err).Msg("failed to cache analysis result")
		}
	}

	if h.publisher != nil {
		if err := h.publisher.PublishDetection(r.Context(), result); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish detection event")
		}
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *AnalyzeHandler) cacheEnabled() bool {
	return h.cache != nil && h.redisCfg.Enabled
}

// analysisDigest keys the result cache by the normalized input
func analysisDigest(message string, lang models.Language, enableContext bool) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%t", message, lang, enableContext)))
	return hex.EncodeToString(sum[:])
}

func (h *AnalyzeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *AnalyzeHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
