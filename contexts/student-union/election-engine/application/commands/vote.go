package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "unionhub/contexts/student-union/election-engine/application"
	"unionhub/contexts/student-union/election-engine/domain/entities"
	domainerrors "unionhub/contexts/student-union/election-engine/domain/errors"
	"unionhub/contexts/student-union/election-engine/ports"
)

// CastVoteCommand is the write-model input for ballot casting.
type CastVoteCommand struct {
	ElectionID  string
	VoterID     string
	CandidateID string
}

// VoteUseCase enforces the vote-integrity rules: only ongoing elections
// accept ballots, only eligible voters may cast, candidates must be on the
// ballot paper, and one ballot per voter per election. The duplicate check is
// owned by the ballot repository's atomic CastBallot, not by this layer.
type VoteUseCase struct {
	Elections   ports.ElectionRepository
	Ballots     ports.BallotRepository
	Eligibility ports.EligibilityResolver
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Cast validates and records one ballot. On success the candidate counter is
// incremented and the voter's voted-set gains the election, both inside the
// repository's atomic unit. The emitted vote_cast event omits the voter id to
// keep ballots anonymous to observers outside the engine.
func (uc VoteUseCase) Cast(ctx context.Context, cmd CastVoteCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	voterID := strings.TrimSpace(cmd.VoterID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	logger.Info("vote cast processing started",
		"event", "election_vote_cast_started",
		"module", "student-union/election-engine",
		"layer", "application",
		"election_id", electionID,
	)
	if electionID == "" || voterID == "" || candidateID == "" {
		logger.Warn("vote cast validation failed",
			"event", "election_vote_cast_validation_failed",
			"module", "student-union/election-engine",
			"layer", "application",
			"election_id", electionID,
		)
		return entities.Ballot{}, domainerrors.ErrInvalidElectionInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Ballot{}, err
	}
	if election.Status != entities.ElectionStatusOngoing {
		return entities.Ballot{}, domainerrors.ErrInvalidTransition
	}
	if _, ok := election.CandidateByID(candidateID); !ok {
		return entities.Ballot{}, domainerrors.ErrUnknownCandidate
	}

	eligible, err := uc.Eligibility.IsEligible(ctx, election.Scope, voterID)
	if err != nil {
		return entities.Ballot{}, err
	}
	if !eligible {
		logger.Warn("vote cast rejected for ineligible voter",
			"event", "election_vote_cast_not_eligible",
			"module", "student-union/election-engine",
			"layer", "application",
			"election_id", electionID,
			"scope", election.Scope.String(),
		)
		return entities.Ballot{}, domainerrors.ErrNotEligible
	}

	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}
	now := uc.now()
	ballot := entities.Ballot{
		BallotID:    ballotID,
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		CastAt:      now,
	}
	if err := uc.Ballots.CastBallot(ctx, ballot); err != nil {
		return entities.Ballot{}, err
	}

	if err := uc.appendVoteCastEvent(ctx, ballot, now); err != nil {
		return entities.Ballot{}, err
	}
	logger.Info("vote cast",
		"event", "election_vote_cast",
		"module", "student-union/election-engine",
		"layer", "application",
		"election_id", electionID,
		"candidate_id", candidateID,
	)
	return ballot, nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc VoteUseCase) appendVoteCastEvent(ctx context.Context, ballot entities.Ballot, occurredAt time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	// voter_id is intentionally absent from the payload.
	data := map[string]any{
		"election_id":  ballot.ElectionID,
		"candidate_id": ballot.CandidateID,
		"cast_at":      occurredAt.Format(time.RFC3339),
	}
	envelope, err := newElectionEnvelope(eventID, "election.vote_cast", ballot.ElectionID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
