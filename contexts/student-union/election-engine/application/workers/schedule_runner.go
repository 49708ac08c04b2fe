package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "unionhub/contexts/student-union/election-engine/application"
	"unionhub/contexts/student-union/election-engine/application/commands"
	"unionhub/contexts/student-union/election-engine/domain/entities"
	domainerrors "unionhub/contexts/student-union/election-engine/domain/errors"
	"unionhub/contexts/student-union/election-engine/ports"
)

// ScheduleRunner drives time-based lifecycle transitions: planned elections
// open when opens_at is reached and ongoing elections complete at closes_at.
// Officer actions can race a cycle; the repository's conditional transition
// makes the loser observe InvalidTransition, which the runner skips.
type ScheduleRunner struct {
	Elections ports.ElectionRepository
	Lifecycle commands.ElectionUseCase
	Clock     ports.Clock
	Disabled  bool
	Logger    *slog.Logger
}

// RunOnce performs one scheduling sweep over planned and ongoing elections.
func (r ScheduleRunner) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	if r.Disabled {
		logger.Debug("election schedule runner disabled by feature flag",
			"event", "election_schedule_runner_disabled",
			"module", "student-union/election-engine",
			"layer", "worker",
		)
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	planned, err := r.Elections.ListElectionsByStatus(ctx, entities.ElectionStatusPlanned)
	if err != nil {
		return err
	}
	for _, election := range planned {
		if now.Before(election.OpensAt) {
			continue
		}
		if _, err := r.Lifecycle.Open(ctx, election.ElectionID); err != nil {
			if errors.Is(err, domainerrors.ErrInvalidTransition) {
				continue
			}
			logger.Error("scheduled election open failed",
				"event", "election_schedule_open_failed",
				"module", "student-union/election-engine",
				"layer", "worker",
				"election_id", election.ElectionID,
				"error", err.Error(),
			)
			return err
		}
	}

	ongoing, err := r.Elections.ListElectionsByStatus(ctx, entities.ElectionStatusOngoing)
	if err != nil {
		return err
	}
	for _, election := range ongoing {
		if now.Before(election.ClosesAt) {
			continue
		}
		if _, err := r.Lifecycle.Close(ctx, election.ElectionID); err != nil {
			if errors.Is(err, domainerrors.ErrInvalidTransition) {
				continue
			}
			logger.Error("scheduled election close failed",
				"event", "election_schedule_close_failed",
				"module", "student-union/election-engine",
				"layer", "worker",
				"election_id", election.ElectionID,
				"error", err.Error(),
			)
			return err
		}
	}
	return nil
}
