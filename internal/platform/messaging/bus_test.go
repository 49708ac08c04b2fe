package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	contractsv1 "unionhub/contracts/gen/events/v1"
)

func outboxPublishedCount(t *testing.T, module string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "unionhub_outbox_published_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "module" && label.GetValue() == module {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(nil)
	received := make(chan contractsv1.Envelope, 1)
	if err := bus.Subscribe(ctx, "election.vote_cast", "test-group", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	event := contractsv1.Envelope{
		EventID:       "evt-1",
		EventType:     "election.vote_cast",
		SourceService: "bus-test",
	}
	if err := bus.Publish(ctx, "election.vote_cast", event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "evt-1" {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber never received the event")
	}
}

func TestPublishCountsOutboxMetricPerSourceService(t *testing.T) {
	bus := NewBus(nil)

	before := outboxPublishedCount(t, "bus-metric-test")
	// No subscribers: publish still succeeds and still counts.
	if err := bus.Publish(context.Background(), "election.vote_cast", contractsv1.Envelope{
		EventID:       "evt-2",
		EventType:     "election.vote_cast",
		SourceService: "bus-metric-test",
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	after := outboxPublishedCount(t, "bus-metric-test")

	if after != before+1 {
		t.Fatalf("expected publish counter to grow by 1, got %v -> %v", before, after)
	}
}
