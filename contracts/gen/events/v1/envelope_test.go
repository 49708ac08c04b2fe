package v1

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEnvelopeWireKeysStayStable(t *testing.T) {
	envelope := Envelope{
		EventID:          "evt-1",
		EventType:        "election.vote_cast",
		OccurredAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SourceService:    "election-engine",
		TraceID:          "evt-1",
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     "election-1",
		Data:             json.RawMessage(`{"candidate_id":"cand-a"}`),
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal wire form: %v", err)
	}
	// Consumers outside this repo key on these names; renames are breaking.
	for _, key := range []string{
		"event_id", "event_type", "occurred_at", "source_service",
		"trace_id", "schema_version", "partition_key_path", "partition_key", "data",
	} {
		if _, ok := wire[key]; !ok {
			t.Fatalf("wire form is missing key %q: %s", key, raw)
		}
	}
	if string(wire["data"]) != `{"candidate_id":"cand-a"}` {
		t.Fatalf("data payload must pass through untouched, got %s", wire["data"])
	}
}
