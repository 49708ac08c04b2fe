package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, name string, labelPair [2]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == labelPair[0] && label.GetValue() == labelPair[1] {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestObserveOutboxPublishedIncrementsPerModule(t *testing.T) {
	const name = "unionhub_outbox_published_total"
	label := [2]string{"module", "metrics-test"}

	before := counterValue(t, name, label)
	ObserveOutboxPublished("metrics-test")
	ObserveOutboxPublished("metrics-test")
	after := counterValue(t, name, label)

	if after != before+2 {
		t.Fatalf("expected counter to grow by 2, got %v -> %v", before, after)
	}
}
