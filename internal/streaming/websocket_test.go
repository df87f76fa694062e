package streaming

import (
	"sync"
	"testing"
	"time"

	"tanabbah/internal/domain/models"
	"tanabbah/pkg/logger"
)

func newStreamingTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func newHubClient(hub *WebSocketHub) *WebSocketClient {
	client := &WebSocketClient{
		hub:    hub,
		send:   make(chan []byte, 8),
		logger: hub.logger,
	}
	hub.registerClient(client)
	return client
}

func TestBroadcastRespectsSubscriptionFilter(t *testing.T) {
	hub := NewWebSocketHub(newStreamingTestLogger())

	all := newHubClient(hub)
	highOnly := newHubClient(hub)
	highOnly.setSubscription(&Subscription{
		Classifications: []models.Classification{models.ClassificationHighRisk},
	})

	hub.broadcastEvent(&DetectionEvent{
		ID:             "evt-1",
		Type:           EventTypeDetection,
		Timestamp:      time.Now(),
		Classification: models.ClassificationSafe,
		RiskScore:      12,
	})

	if got := len(all.send); got != 1 {
		t.Errorf("unfiltered client received %d events, want 1", got)
	}
	if got := len(highOnly.send); got != 0 {
		t.Errorf("filtered client received %d events, want 0", got)
	}

	hub.broadcastEvent(&DetectionEvent{
		ID:             "evt-2",
		Type:           EventTypeDetection,
		Timestamp:      time.Now(),
		Classification: models.ClassificationHighRisk,
		RiskScore:      90,
	})

	if got := len(highOnly.send); got != 1 {
		t.Errorf("filtered client received %d high risk events, want 1", got)
	}
}

func TestSubscriptionUpdateConcurrentWithBroadcast(t *testing.T) {
	hub := NewWebSocketHub(newStreamingTestLogger())
	client := newHubClient(hub)

	event := &DetectionEvent{
		ID:             "evt-race",
		Type:           EventTypeDetection,
		Timestamp:      time.Now(),
		Classification: models.ClassificationSuspicious,
		RiskScore:      60,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			client.setSubscription(&Subscription{MinRiskScore: float64(i % 100)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			hub.broadcastEvent(event)
			// Drain so the buffered channel never blocks delivery.
			for len(client.send) > 0 {
				<-client.send
			}
		}
	}()
	wg.Wait()

	if sub := client.getSubscription(); sub == nil {
		t.Error("subscription should be set after updates")
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := NewWebSocketHub(newStreamingTestLogger())
	client := newHubClient(hub)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}

	hub.unregisterClient(client)

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d, want 0", got)
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}
