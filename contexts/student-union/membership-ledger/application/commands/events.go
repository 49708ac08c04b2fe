package commands

import (
	"encoding/json"
	"time"

	"unionhub/contexts/student-union/membership-ledger/ports"
)

func newLedgerEnvelope(
	eventID string,
	eventType string,
	clubID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Command-side events are partitioned by club for stable ordering on
	// club-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "membership-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "club_id",
		PartitionKey:     clubID,
		Data:             payload,
	}, nil
}
