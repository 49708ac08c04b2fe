package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	electionengine "unionhub/contexts/student-union/election-engine"
	domainerrors "unionhub/contexts/student-union/election-engine/domain/errors"
	httptransport "unionhub/contexts/student-union/election-engine/transport/http"
)

func newOngoingElection(t *testing.T, module electionengine.Module, voters ...string) string {
	t.Helper()
	for _, voter := range voters {
		module.Store.AddToGlobalRoll(voter)
	}
	created, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title: "union president",
		Scope: "global",
		Candidates: []httptransport.CandidateInput{
			{CandidateID: "cand-a", Name: "Alice"},
			{CandidateID: "cand-b", Name: "Bikila"},
		},
		OpensAt:  time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		ClosesAt: time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if created.Status != "planned" {
		t.Fatalf("expected planned election, got %s", created.Status)
	}
	if _, err := module.Handler.OpenElectionHandler(context.Background(), created.ElectionID); err != nil {
		t.Fatalf("open election failed: %v", err)
	}
	return created.ElectionID
}

func TestElectionDuplicateVoteRejectedAndTallyUnchanged(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	electionID := newOngoingElection(t, module, "voter-1")

	first, err := module.Handler.CastVoteHandler(context.Background(), electionID, "voter-1", httptransport.CastVoteRequest{
		CandidateID: "cand-a",
	})
	if err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if first.ElectionID != electionID {
		t.Fatalf("unexpected ballot election id %s", first.ElectionID)
	}

	_, err = module.Handler.CastVoteHandler(context.Background(), electionID, "voter-1", httptransport.CastVoteRequest{
		CandidateID: "cand-b",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected ErrDuplicateVote, got %v", err)
	}

	results, err := module.Handler.ElectionResultsHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	votes := map[string]int{}
	for _, entry := range results.Tally {
		votes[entry.CandidateID] = entry.Votes
	}
	if votes["cand-a"] != 1 || votes["cand-b"] != 0 {
		t.Fatalf("expected tally a=1 b=0, got %v", votes)
	}
}

func TestElectionVoteRequiresEligibilityAndOngoingStatus(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	electionID := newOngoingElection(t, module, "voter-1")

	_, err := module.Handler.CastVoteHandler(context.Background(), electionID, "stranger", httptransport.CastVoteRequest{
		CandidateID: "cand-a",
	})
	if !errors.Is(err, domainerrors.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}

	_, err = module.Handler.CastVoteHandler(context.Background(), electionID, "voter-1", httptransport.CastVoteRequest{
		CandidateID: "cand-z",
	})
	if !errors.Is(err, domainerrors.ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate, got %v", err)
	}

	if _, err := module.Handler.CloseElectionHandler(context.Background(), electionID); err != nil {
		t.Fatalf("close election failed: %v", err)
	}
	_, err = module.Handler.CastVoteHandler(context.Background(), electionID, "voter-1", httptransport.CastVoteRequest{
		CandidateID: "cand-a",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after close, got %v", err)
	}
}

func TestElectionAnnounceIsIdempotentWithStableTieBreak(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	electionID := newOngoingElection(t, module, "voter-1", "voter-2")

	// One vote each: tied counters must keep candidate insertion order.
	if _, err := module.Handler.CastVoteHandler(context.Background(), electionID, "voter-1", httptransport.CastVoteRequest{CandidateID: "cand-b"}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), electionID, "voter-2", httptransport.CastVoteRequest{CandidateID: "cand-a"}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.CloseElectionHandler(context.Background(), electionID); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	first, err := module.Handler.AnnounceResultsHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("announce failed: %v", err)
	}
	if len(first.Tally) != 2 {
		t.Fatalf("expected 2 tally entries, got %d", len(first.Tally))
	}
	if first.Tally[0].CandidateID != "cand-a" || first.Tally[1].CandidateID != "cand-b" {
		t.Fatalf("expected insertion-order tie break [cand-a cand-b], got [%s %s]",
			first.Tally[0].CandidateID, first.Tally[1].CandidateID)
	}
	if first.Tally[0].Rank != 1 || first.Tally[1].Rank != 2 {
		t.Fatalf("expected ranks 1 and 2, got %d and %d", first.Tally[0].Rank, first.Tally[1].Rank)
	}

	second, err := module.Handler.AnnounceResultsHandler(context.Background(), electionID)
	if err != nil {
		t.Fatalf("announce replay failed: %v", err)
	}
	if !second.Announced {
		t.Fatalf("expected announced flag on replay")
	}
	if second.Tally[0].CandidateID != first.Tally[0].CandidateID || second.Tally[0].Votes != first.Tally[0].Votes {
		t.Fatalf("replayed announce returned a different tally")
	}

	announced := 0
	for _, eventType := range module.Store.PendingOutboxTypes() {
		if eventType == "election.results_announced" {
			announced++
		}
	}
	if announced != 1 {
		t.Fatalf("expected exactly one results_announced event, got %d", announced)
	}
}

func TestElectionCancelOnlyFromPlannedOrOngoing(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	electionID := newOngoingElection(t, module, "voter-1")

	if _, err := module.Handler.CloseElectionHandler(context.Background(), electionID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := module.Handler.CancelElectionHandler(context.Background(), electionID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition cancelling a completed election, got %v", err)
	}
}

func TestElectionClubScopeRequiresActiveClub(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	module.Store.SetClubStatus("club-1", "suspended")

	_, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title: "club lead",
		Scope: "club:club-1",
		Candidates: []httptransport.CandidateInput{
			{CandidateID: "cand-a", Name: "Alice"},
			{CandidateID: "cand-b", Name: "Bikila"},
		},
		OpensAt:  time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		ClosesAt: time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339),
	})
	if !errors.Is(err, domainerrors.ErrClubNotVotable) {
		t.Fatalf("expected ErrClubNotVotable, got %v", err)
	}

	module.Store.SetClubStatus("club-1", "active")
	module.Store.AddClubMember("club-1", "member-1")
	created, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title: "club lead",
		Scope: "club:club-1",
		Candidates: []httptransport.CandidateInput{
			{CandidateID: "cand-a", Name: "Alice"},
			{CandidateID: "cand-b", Name: "Bikila"},
		},
		OpensAt:  time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		ClosesAt: time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create club election failed: %v", err)
	}
	if _, err := module.Handler.OpenElectionHandler(context.Background(), created.ElectionID); err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := module.Handler.CastVoteHandler(context.Background(), created.ElectionID, "member-1", httptransport.CastVoteRequest{CandidateID: "cand-a"}); err != nil {
		t.Fatalf("club member vote failed: %v", err)
	}
	_, err = module.Handler.CastVoteHandler(context.Background(), created.ElectionID, "outsider", httptransport.CastVoteRequest{CandidateID: "cand-a"})
	if !errors.Is(err, domainerrors.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible for outsider, got %v", err)
	}
}

func TestElectionCreateValidation(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)

	_, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title: "solo",
		Scope: "global",
		Candidates: []httptransport.CandidateInput{
			{CandidateID: "cand-a", Name: "Alice"},
		},
		OpensAt:  time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		ClosesAt: time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339),
	})
	if !errors.Is(err, domainerrors.ErrInvalidElectionInput) {
		t.Fatalf("expected ErrInvalidElectionInput for one candidate, got %v", err)
	}

	_, err = module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		Title: "backwards window",
		Scope: "global",
		Candidates: []httptransport.CandidateInput{
			{CandidateID: "cand-a", Name: "Alice"},
			{CandidateID: "cand-b", Name: "Bikila"},
		},
		OpensAt:  time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339),
		ClosesAt: time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	if !errors.Is(err, domainerrors.ErrInvalidElectionInput) {
		t.Fatalf("expected ErrInvalidElectionInput for closesAt before opensAt, got %v", err)
	}
}
