package ports

import (
	"context"
	"time"

	contractsv1 "unionhub/contracts/gen/events/v1"
	"unionhub/contexts/student-union/election-engine/domain/entities"
)

// ElectionRepository persists elections and their candidate counters.
//
// TransitionStatus and FreezeResults are conditional updates: the store must
// apply them only while the election still satisfies the stated precondition,
// so a lost race surfaces as ErrInvalidTransition instead of a double
// transition.
type ElectionRepository interface {
	InsertElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListElections(ctx context.Context) ([]entities.Election, error)
	ListElectionsByStatus(ctx context.Context, status entities.ElectionStatus) ([]entities.Election, error)
	TransitionStatus(
		ctx context.Context,
		electionID string,
		from []entities.ElectionStatus,
		to entities.ElectionStatus,
		at time.Time,
	) (entities.Election, error)
	FreezeResults(
		ctx context.Context,
		electionID string,
		tally []entities.TallyEntry,
		announcedAt time.Time,
	) (entities.Election, error)
}

// BallotRepository owns the one-ballot-per-voter guarantee. CastBallot is a
// single atomic unit: insert the ballot (unique on election_id+voter_id),
// increment the candidate counter, and append the election to the voter's
// voted-set. A duplicate must fail with ErrDuplicateVote and leave every
// counter untouched.
type BallotRepository interface {
	CastBallot(ctx context.Context, ballot entities.Ballot) error
	HasVoted(ctx context.Context, electionID string, voterID string) (bool, error)
	CountBallots(ctx context.Context, electionID string) (int, error)
	ListVotedElections(ctx context.Context, voterID string) ([]string, error)
}

// EligibilityResolver answers whether a voter belongs to the eligible set of
// an election scope: the union-wide roll for global elections or the club's
// active-member set for club elections.
type EligibilityResolver interface {
	IsEligible(ctx context.Context, scope entities.Scope, voterID string) (bool, error)
}

// ClubDirectory is a read-only projection of club state owned by the
// membership ledger. Election creation only needs the status.
type ClubDirectory interface {
	ClubStatus(ctx context.Context, clubID string) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxWriter appends an event inside the same store operation scope as the
// state change that produced it.
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

// EventPublisher publishes canonical envelopes to a topic. Delivery is
// fire-and-forget from the engine's point of view; failures never roll back
// election state.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
