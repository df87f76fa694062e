package streaming

import (
	"time"

	"github.com/google/uuid"

	"tanabbah/internal/domain/models"
)

// EventType represents the type of detection event
type EventType string

const (
	EventTypeDetection      EventType = "detection"
	EventTypeReportReceived EventType = "report_received"
)

// DetectionEvent is the real-time notification emitted for every
// completed analysis. It carries the verdict without the raw message,
// which clients do not need and should not see.
type DetectionEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	Classification models.Classification `json:"classification"`
	RiskScore      float64               `json:"risk_score"`
	URLRiskScore   float64               `json:"url_risk_score"`
	URLsFound      int                   `json:"urls_found"`
	Language       models.Language       `json:"language"`
	RedFlags       []string              `json:"red_flags,omitempty"`
	ModelUsed      string                `json:"model_used,omitempty"`
}

// NewDetectionEvent creates an event from a finished analysis result
func NewDetectionEvent(result *models.AnalysisResult) *DetectionEvent {
	event := &DetectionEvent{
		ID:             uuid.New().String(),
		Type:           EventTypeDetection,
		Timestamp:      time.Now(),
		Classification: result.Classification,
		RiskScore:      result.CombinedRiskScore,
		URLRiskScore:   result.URLRiskScore,
		URLsFound:      result.URLsFound,
		Language:       result.Language,
		RedFlags:       result.RedFlags,
	}
	if result.ContextVerdict != nil {
		event.ModelUsed = result.ContextVerdict.ModelUsed
	}
	return event
}

// ReportEvent is emitted when a user files a report
type ReportEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	Reference string          `json:"reference"`
	Language  models.Language `json:"language"`
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by classification (empty = all)
	Classifications []models.Classification `json:"classifications,omitempty"`

	// Minimum combined risk score (0 = all)
	MinRiskScore float64 `json:"min_risk_score,omitempty"`

	// Filter by language (empty = all)
	Languages []models.Language `json:"languages,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *DetectionEvent) bool {
	if len(s.Classifications) > 0 {
		found := false
		for _, c := range s.Classifications {
			if c == event.Classification {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if s.MinRiskScore > 0 && event.RiskScore < s.MinRiskScore {
		return false
	}

	if len(s.Languages) > 0 {
		found := false
		for _, l := range s.Languages {
			if l == event.Language {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
