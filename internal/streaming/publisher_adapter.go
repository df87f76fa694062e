package streaming

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tanabbah/internal/domain/models"
)

// Publisher turns finished analyses into events on the bus. Consumers,
// the WebSocket hub included, receive them through EventBus.Subscribe.
type Publisher struct {
	eventBus *EventBus
}

// NewPublisher creates a new publisher adapter
func NewPublisher(eventBus *EventBus) *Publisher {
	return &Publisher{eventBus: eventBus}
}

// PublishDetection publishes an event for a completed analysis
func (p *Publisher) PublishDetection(ctx context.Context, result *models.AnalysisResult) error {
	event := NewDetectionEvent(result)

	if p.eventBus != nil {
		return p.eventBus.Publish(ctx, event)
	}
	return nil
}

// PublishReport publishes a user report event
func (p *Publisher) PublishReport(ctx context.Context, reference string, lang models.Language) error {
	event := &ReportEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeReportReceived,
		Timestamp: time.Now(),
		Reference: reference,
		Language:  lang,
	}

	if p.eventBus != nil {
		return p.eventBus.PublishReport(ctx, event)
	}

	return nil
}
