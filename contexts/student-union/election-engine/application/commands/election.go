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

// CandidateInput is one ballot-paper entry for election creation.
type CandidateInput struct {
	CandidateID string
	Name        string
}

// CreateElectionCommand is the write-model input for election creation.
type CreateElectionCommand struct {
	Title      string
	Scope      string
	Candidates []CandidateInput
	OpensAt    time.Time
	ClosesAt   time.Time
}

// ElectionUseCase owns the election lifecycle state machine
// (planned -> ongoing -> completed -> announced, cancelled from the first
// two) and the announce freeze.
type ElectionUseCase struct {
	Elections ports.ElectionRepository
	Ballots   ports.BallotRepository
	Clubs     ports.ClubDirectory
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// Create registers a new election in planned status. The club referenced by a
// club scope must be active; ballot papers need at least two candidates and a
// close time after the open time.
func (uc ElectionUseCase) Create(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("election create processing started",
		"event", "election_create_started",
		"module", "student-union/election-engine",
		"layer", "application",
		"scope", strings.TrimSpace(cmd.Scope),
		"candidate_count", len(cmd.Candidates),
	)

	scope, err := entities.ParseScope(cmd.Scope)
	if err != nil {
		logger.Warn("election create scope invalid",
			"event", "election_create_validation_failed",
			"module", "student-union/election-engine",
			"layer", "application",
			"scope", strings.TrimSpace(cmd.Scope),
		)
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}
	if len(cmd.Candidates) < 2 || !cmd.ClosesAt.After(cmd.OpensAt) {
		logger.Warn("election create validation failed",
			"event", "election_create_validation_failed",
			"module", "student-union/election-engine",
			"layer", "application",
			"scope", scope.String(),
			"candidate_count", len(cmd.Candidates),
		)
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}
	seen := make(map[string]struct{}, len(cmd.Candidates))
	for _, candidate := range cmd.Candidates {
		id := strings.TrimSpace(candidate.CandidateID)
		if id == "" || strings.TrimSpace(candidate.Name) == "" {
			return entities.Election{}, domainerrors.ErrInvalidElectionInput
		}
		if _, dup := seen[id]; dup {
			return entities.Election{}, domainerrors.ErrInvalidElectionInput
		}
		seen[id] = struct{}{}
	}

	if scope.Kind == entities.ScopeKindClub {
		status, err := uc.Clubs.ClubStatus(ctx, scope.ClubID)
		if err != nil {
			return entities.Election{}, err
		}
		if !strings.EqualFold(strings.TrimSpace(status), "active") {
			return entities.Election{}, domainerrors.ErrClubNotVotable
		}
	}

	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	now := uc.now()
	election := entities.Election{
		ElectionID: electionID,
		Title:      strings.TrimSpace(cmd.Title),
		Scope:      scope,
		Status:     entities.ElectionStatusPlanned,
		OpensAt:    cmd.OpensAt.UTC(),
		ClosesAt:   cmd.ClosesAt.UTC(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for position, candidate := range cmd.Candidates {
		election.Candidates = append(election.Candidates, entities.Candidate{
			CandidateID: strings.TrimSpace(candidate.CandidateID),
			Name:        strings.TrimSpace(candidate.Name),
			Position:    position,
		})
	}
	if err := uc.Elections.InsertElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election created",
		"event", "election_created",
		"module", "student-union/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"scope", scope.String(),
		"candidate_count", len(election.Candidates),
	)
	return election, nil
}

// Open transitions planned -> ongoing. Opening before opens_at is a
// deliberate officer override and is allowed; the override is logged so the
// audit trail shows the early start.
func (uc ElectionUseCase) Open(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.now()
	election, err := uc.Elections.TransitionStatus(ctx, strings.TrimSpace(electionID),
		[]entities.ElectionStatus{entities.ElectionStatusPlanned},
		entities.ElectionStatusOngoing, now)
	if err != nil {
		return entities.Election{}, err
	}
	if now.Before(election.OpensAt) {
		logger.Info("election opened early by officer override",
			"event", "election_opened_early",
			"module", "student-union/election-engine",
			"layer", "application",
			"election_id", election.ElectionID,
			"opens_at", election.OpensAt,
		)
	}
	if err := uc.appendLifecycleEvent(ctx, "election.opened", election, now, nil); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election opened",
		"event", "election_opened",
		"module", "student-union/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
	)
	return election, nil
}

// Close transitions ongoing -> completed and freezes the vote counters: every
// mutation path checks status, so no ballot can land after this returns.
func (uc ElectionUseCase) Close(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.now()
	election, err := uc.Elections.TransitionStatus(ctx, strings.TrimSpace(electionID),
		[]entities.ElectionStatus{entities.ElectionStatusOngoing},
		entities.ElectionStatusCompleted, now)
	if err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendLifecycleEvent(ctx, "election.closed", election, now, nil); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election closed",
		"event", "election_closed",
		"module", "student-union/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
	)
	return election, nil
}

// Cancel is reachable from planned or ongoing only and freezes all further
// voting. Completed and announced elections cannot be cancelled.
func (uc ElectionUseCase) Cancel(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.now()
	election, err := uc.Elections.TransitionStatus(ctx, strings.TrimSpace(electionID),
		[]entities.ElectionStatus{entities.ElectionStatusPlanned, entities.ElectionStatusOngoing},
		entities.ElectionStatusCancelled, now)
	if err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendLifecycleEvent(ctx, "election.cancelled", election, now, nil); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election cancelled",
		"event", "election_cancelled",
		"module", "student-union/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
	)
	return election, nil
}

// Announce computes the ranked tally of a completed election, freezes it onto
// the record, and marks the election announced. The action is one-shot and
// idempotent: a retry observes announced=true and returns the frozen tally
// without recomputing from counters.
func (uc ElectionUseCase) Announce(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if election.Announced {
		logger.Info("election announce replayed",
			"event", "election_announce_replayed",
			"module", "student-union/election-engine",
			"layer", "application",
			"election_id", election.ElectionID,
		)
		return election, nil
	}
	if election.Status != entities.ElectionStatusCompleted {
		return entities.Election{}, domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	tally := election.RankedTally()
	frozen, err := uc.Elections.FreezeResults(ctx, election.ElectionID, tally, now)
	if err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendLifecycleEvent(ctx, "election.results_announced", frozen, now, map[string]any{
		"ranked_tally": tallyPayload(frozen.Results),
		"announced_at": now.Format(time.RFC3339),
	}); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election results announced",
		"event", "election_results_announced",
		"module", "student-union/election-engine",
		"layer", "application",
		"election_id", frozen.ElectionID,
		"candidate_count", len(frozen.Results),
	)
	return frozen, nil
}

func (uc ElectionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc ElectionUseCase) appendLifecycleEvent(
	ctx context.Context,
	eventType string,
	election entities.Election,
	occurredAt time.Time,
	extra map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"election_id": election.ElectionID,
		"scope":       election.Scope.String(),
		"status":      string(election.Status),
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	for key, value := range extra {
		data[key] = value
	}
	envelope, err := newElectionEnvelope(eventID, eventType, election.ElectionID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func tallyPayload(entries []entities.TallyEntry) []map[string]any {
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		items = append(items, map[string]any{
			"candidate_id": entry.CandidateID,
			"name":         entry.Name,
			"votes":        entry.Votes,
			"rank":         entry.Rank,
		})
	}
	return items
}
