package queries

import (
	"context"
	"strings"

	"unionhub/contexts/student-union/election-engine/domain/entities"
	"unionhub/contexts/student-union/election-engine/ports"
)

type ResultsUseCase struct {
	Elections ports.ElectionRepository
	Ballots   ports.BallotRepository
}

func (uc ResultsUseCase) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
}

func (uc ResultsUseCase) ListElections(ctx context.Context) ([]entities.Election, error) {
	return uc.Elections.ListElections(ctx)
}

// Tally returns the announced ranked tally once frozen; before announcement
// it computes a live ranking from the current counters.
func (uc ResultsUseCase) Tally(ctx context.Context, electionID string) ([]entities.TallyEntry, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return nil, err
	}
	if election.Announced {
		return election.Results, nil
	}
	return election.RankedTally(), nil
}

// BallotCount reports the number of distinct ballots, which must always equal
// the sum of candidate counters.
func (uc ResultsUseCase) BallotCount(ctx context.Context, electionID string) (int, error) {
	return uc.Ballots.CountBallots(ctx, strings.TrimSpace(electionID))
}

// VotedElections exposes the voter's derived voted-set index.
func (uc ResultsUseCase) VotedElections(ctx context.Context, voterID string) ([]string, error) {
	return uc.Ballots.ListVotedElections(ctx, strings.TrimSpace(voterID))
}
