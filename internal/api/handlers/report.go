package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"

	"tanabbah/internal/domain/models"
	"tanabbah/internal/domain/services"
	"tanabbah/internal/infrastructure/cache"
	"tanabbah/internal/streaming"
	"tanabbah/pkg/logger"
)

// ReportHandler handles user-submitted phishing reports
type ReportHandler struct {
	cache     *cache.RedisCache
	publisher *streaming.Publisher
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(c *cache.RedisCache, publisher *streaming.Publisher, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		cache:     c,
		publisher: publisher,
		logger:    log.WithComponent("report-handler"),
	}
}

// ReportRequest is the inbound payload for POST /api/v1/report
type ReportRequest struct {
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp,omitempty"`
	Language  models.Language `json:"language,omitempty"`
}

// ReportResponse acknowledges a received report
type ReportResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
}

// Submit handles POST /api/v1/report
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
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

	lang := req.Language
	if lang != models.LanguageEnglish {
		lang = models.LanguageArabic
	}

	reference := h.referenceID(r, message)
	h.logger.Info().Str("reference", reference).Int("length", len(message)).Msg("report received")

	if h.publisher != nil {
		if err := h.publisher.PublishReport(r.Context(), reference, lang); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish report event")
		}
	}

	h.respondJSON(w, http.StatusOK, ReportResponse{
		Status:      "success",
		Message:     "Report received successfully",
		ReferenceID: reference,
	})
}

// referenceID produces a TN-xxxxx reference. The Redis counter gives
// unique sequential numbers; without Redis the message hash keeps the
// reference stable for the same report.
func (h *ReportHandler) referenceID(r *http.Request, message string) string {
	if h.cache != nil {
		if n, err := h.cache.NextReportNumber(r.Context()); err == nil {
			return fmt.Sprintf("TN-%05d", n%100000)
		}
	}

	hasher := fnv.New32a()
	hasher.Write([]byte(message))
	return fmt.Sprintf("TN-%05d", hasher.Sum32()%100000)
}

func (h *ReportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ReportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
