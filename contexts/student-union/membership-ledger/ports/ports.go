package ports

import (
	"context"
	"time"

	contractsv1 "unionhub/contracts/gen/events/v1"
	"unionhub/contexts/student-union/membership-ledger/domain/entities"
)

// LedgerRepository persists clubs and membership requests.
//
// UpdateClub is the atomic read-modify-write required by the budget and
// roster invariants: the mutate function runs against the current club
// snapshot under the store's exclusion (mutex or row lock) and its result is
// persisted only when it returns nil. A returned error aborts with no write.
//
// InsertRequest must reject a second pending request for the same
// (club_id, user_id) with ErrConflict. DecideRequest is conditional on the
// request still being pending, so concurrent approve/reject attempts resolve
// to exactly one decision.
type LedgerRepository interface {
	InsertClub(ctx context.Context, club entities.Club) error
	GetClub(ctx context.Context, clubID string) (entities.Club, error)
	UpdateClub(ctx context.Context, clubID string, mutate func(*entities.Club) error) (entities.Club, error)
	ListActiveMemberIDs(ctx context.Context, clubID string) ([]string, error)

	InsertRequest(ctx context.Context, request entities.MembershipRequest) error
	GetRequest(ctx context.Context, requestID string) (entities.MembershipRequest, error)
	ListRequestsByClub(ctx context.Context, clubID string) ([]entities.MembershipRequest, error)
	DecideRequest(
		ctx context.Context,
		requestID string,
		status entities.RequestStatus,
		decidedBy string,
		decidedAt time.Time,
	) (entities.MembershipRequest, error)
}

// CapabilityChecker is the authorization boundary: the ledger only enforces
// state transitions and delegates who-may-decide to the identity side.
type CapabilityChecker interface {
	CanManageClubs(ctx context.Context, userID string) (bool, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
