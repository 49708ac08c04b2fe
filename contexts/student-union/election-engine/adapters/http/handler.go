package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"unionhub/contexts/student-union/election-engine/application/commands"
	"unionhub/contexts/student-union/election-engine/application/queries"
	"unionhub/contexts/student-union/election-engine/domain/entities"
	domainerrors "unionhub/contexts/student-union/election-engine/domain/errors"
	httptransport "unionhub/contexts/student-union/election-engine/transport/http"
)

type Handler struct {
	Lifecycle commands.ElectionUseCase
	Votes     commands.VoteUseCase
	Results   queries.ResultsUseCase
	Logger    *slog.Logger
}

func (h Handler) CreateElectionHandler(
	ctx context.Context,
	req httptransport.CreateElectionRequest,
) (httptransport.ElectionResponse, error) {
	opensAt, err := time.Parse(time.RFC3339, req.OpensAt)
	if err != nil {
		return httptransport.ElectionResponse{}, domainerrors.ErrInvalidElectionInput
	}
	closesAt, err := time.Parse(time.RFC3339, req.ClosesAt)
	if err != nil {
		return httptransport.ElectionResponse{}, domainerrors.ErrInvalidElectionInput
	}
	candidates := make([]commands.CandidateInput, 0, len(req.Candidates))
	for _, candidate := range req.Candidates {
		candidates = append(candidates, commands.CandidateInput{
			CandidateID: candidate.CandidateID,
			Name:        candidate.Name,
		})
	}
	election, err := h.Lifecycle.Create(ctx, commands.CreateElectionCommand{
		Title:      req.Title,
		Scope:      req.Scope,
		Candidates: candidates,
		OpensAt:    opensAt,
		ClosesAt:   closesAt,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) OpenElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Lifecycle.Open(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) CloseElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Lifecycle.Close(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) CancelElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Lifecycle.Cancel(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) AnnounceResultsHandler(ctx context.Context, electionID string) (httptransport.ResultsResponse, error) {
	election, err := h.Lifecycle.Announce(ctx, electionID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return httptransport.ResultsResponse{
		ElectionID: election.ElectionID,
		Status:     string(election.Status),
		Announced:  election.Announced,
		Tally:      mapTally(election.Results),
	}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	electionID string,
	voterID string,
	req httptransport.CastVoteRequest,
) (httptransport.BallotResponse, error) {
	ballot, err := h.Votes.Cast(ctx, commands.CastVoteCommand{
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	// voter_id stays out of the response body; the caller already knows who
	// they are and observers must not.
	return httptransport.BallotResponse{
		BallotID:    ballot.BallotID,
		ElectionID:  ballot.ElectionID,
		CandidateID: ballot.CandidateID,
		CastAt:      ballot.CastAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Results.GetElection(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) ListElectionsHandler(ctx context.Context) (httptransport.ElectionListResponse, error) {
	elections, err := h.Results.ListElections(ctx)
	if err != nil {
		return httptransport.ElectionListResponse{}, err
	}
	items := make([]httptransport.ElectionResponse, 0, len(elections))
	for _, election := range elections {
		items = append(items, mapElection(election))
	}
	return httptransport.ElectionListResponse{Items: items}, nil
}

func (h Handler) ElectionResultsHandler(ctx context.Context, electionID string) (httptransport.ResultsResponse, error) {
	election, err := h.Results.GetElection(ctx, electionID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	tally, err := h.Results.Tally(ctx, electionID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return httptransport.ResultsResponse{
		ElectionID: election.ElectionID,
		Status:     string(election.Status),
		Announced:  election.Announced,
		Tally:      mapTally(tally),
	}, nil
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	resp := httptransport.ElectionResponse{
		ElectionID: election.ElectionID,
		Title:      election.Title,
		Scope:      election.Scope.String(),
		Status:     string(election.Status),
		OpensAt:    election.OpensAt.Format(time.RFC3339),
		ClosesAt:   election.ClosesAt.Format(time.RFC3339),
		Announced:  election.Announced,
		Candidates: make([]httptransport.CandidateResponse, 0, len(election.Candidates)),
		Results:    mapTally(election.Results),
	}
	if election.AnnouncedAt != nil {
		resp.AnnouncedAt = election.AnnouncedAt.Format(time.RFC3339)
	}
	for _, candidate := range election.Candidates {
		resp.Candidates = append(resp.Candidates, httptransport.CandidateResponse{
			CandidateID: candidate.CandidateID,
			Name:        candidate.Name,
			Votes:       candidate.Votes,
		})
	}
	return resp
}

func mapTally(entries []entities.TallyEntry) []httptransport.TallyEntry {
	if len(entries) == 0 {
		return nil
	}
	items := make([]httptransport.TallyEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, httptransport.TallyEntry{
			CandidateID: entry.CandidateID,
			Name:        entry.Name,
			Votes:       entry.Votes,
			Rank:        entry.Rank,
		})
	}
	return items
}
