package streaming

import (
	"context"
	"testing"
	"time"

	"tanabbah/internal/domain/models"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	eb := NewEventBus(nil, newStreamingTestLogger())
	defer eb.Close()

	events, unsubscribe := eb.Subscribe(context.Background(), &Subscription{})
	defer unsubscribe()

	if got := eb.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", got)
	}

	published := &DetectionEvent{
		ID:             "evt-1",
		Type:           EventTypeDetection,
		Timestamp:      time.Now(),
		Classification: models.ClassificationHighRisk,
		RiskScore:      85,
	}
	if err := eb.Publish(context.Background(), published); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-events:
		if got.ID != "evt-1" {
			t.Errorf("received event %q, want evt-1", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the published event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	eb := NewEventBus(nil, newStreamingTestLogger())
	defer eb.Close()

	events, unsubscribe := eb.Subscribe(context.Background(), &Subscription{})
	unsubscribe()

	if got := eb.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount = %d, want 0", got)
	}
	select {
	case _, ok := <-events:
		if ok {
			t.Error("channel should deliver no events after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("channel should be closed after unsubscribe")
	}

	// Unsubscribing twice must not panic on the closed channel.
	unsubscribe()
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	eb := NewEventBus(nil, newStreamingTestLogger())
	defer eb.Close()

	_, unsubscribe := eb.Subscribe(context.Background(), &Subscription{})
	defer unsubscribe()

	event := &DetectionEvent{ID: "evt-flood", Type: EventTypeDetection, Timestamp: time.Now()}
	for i := 0; i < 150; i++ {
		if err := eb.Publish(context.Background(), event); err != nil {
			t.Fatalf("Publish() error = %v on event %d", err, i)
		}
	}
}

func TestPublisherFeedsSubscribers(t *testing.T) {
	eb := NewEventBus(nil, newStreamingTestLogger())
	defer eb.Close()

	events, unsubscribe := eb.Subscribe(context.Background(), &Subscription{})
	defer unsubscribe()

	p := NewPublisher(eb)
	result := &models.AnalysisResult{
		CombinedRiskScore: 74,
		Classification:    models.ClassificationSuspicious,
		Language:          models.LanguageArabic,
	}
	if err := p.PublishDetection(context.Background(), result); err != nil {
		t.Fatalf("PublishDetection() error = %v", err)
	}

	select {
	case got := <-events:
		if got.Classification != models.ClassificationSuspicious {
			t.Errorf("Classification = %v, want SUSPICIOUS", got.Classification)
		}
		if got.RiskScore != 74 {
			t.Errorf("RiskScore = %v, want 74", got.RiskScore)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the detection event")
	}
}

func TestPublisherWithoutBusIsNoop(t *testing.T) {
	p := NewPublisher(nil)
	if err := p.PublishDetection(context.Background(), &models.AnalysisResult{}); err != nil {
		t.Errorf("PublishDetection() error = %v, want nil", err)
	}
}
