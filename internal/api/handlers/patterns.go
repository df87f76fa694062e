package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tanabbah/internal/domain/services"
	"tanabbah/internal/domain/services/ai"
	"tanabbah/pkg/logger"
)

// PatternsHandler serves the detection pattern catalog so clients can
// run a first-pass check locally before calling the API.
type PatternsHandler struct {
	trust  *services.TrustRegistry
	logger *logger.Logger
}

// NewPatternsHandler creates a new patterns handler
func NewPatternsHandler(trust *services.TrustRegistry, log *logger.Logger) *PatternsHandler {
	return &PatternsHandler{
		trust:  trust,
		logger: log.WithComponent("patterns-handler"),
	}
}

// Get handles GET /api/v1/patterns
func (h *PatternsHandler) Get(w http.ResponseWriter, r *http.Request) {
	patterns := struct {
		Version         string   `json:"version"`
		LastUpdated     string   `json:"last_updated"`
		UrgencyWords    []string `json:"urgency_words"`
		ThreatWords     []string `json:"threat_words"`
		PrizeWords      []string `json:"prize_words"`
		SensitiveWords  []string `json:"sensitive_words"`
		GovServiceWords []string `json:"gov_service_words"`
		URLShorteners   []string `json:"url_shorteners"`
		SuspiciousTLDs  []string `json:"suspicious_tlds"`
		TrustedDomains  []string `json:"trusted_domains"`
	}{
		Version:         "2.1.0",
		LastUpdated:     time.Now().UTC().Format(time.RFC3339),
		UrgencyWords:    ai.UrgencyKeywords,
		ThreatWords:     ai.ThreatKeywords,
		PrizeWords:      ai.PrizeKeywords,
		SensitiveWords:  ai.SensitiveKeywords,
		GovServiceWords: ai.GovServiceKeywords,
		URLShorteners:   ai.ContextShorteners,
		SuspiciousTLDs:  services.RiskyTLDs(),
		TrustedDomains:  h.trust.Domains(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(patterns)
}
