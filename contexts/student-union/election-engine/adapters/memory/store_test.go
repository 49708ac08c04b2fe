package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"unionhub/contexts/student-union/election-engine/domain/entities"
	domainerrors "unionhub/contexts/student-union/election-engine/domain/errors"
)

func seedOngoing(candidates ...string) entities.Election {
	election := entities.Election{
		ElectionID: "election-1",
		Title:      "seed",
		Scope:      entities.GlobalScope(),
		Status:     entities.ElectionStatusOngoing,
		OpensAt:    time.Now().UTC().Add(-time.Hour),
		ClosesAt:   time.Now().UTC().Add(time.Hour),
	}
	for i, id := range candidates {
		election.Candidates = append(election.Candidates, entities.Candidate{
			CandidateID: id,
			Name:        id,
			Position:    i,
		})
	}
	return election
}

func TestCastBallotGuardsDuplicatesUnderConcurrency(t *testing.T) {
	store := NewStore([]entities.Election{seedOngoing("cand-a", "cand-b")})

	const attempts = 32
	var wg sync.WaitGroup
	outcomes := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			outcomes <- store.CastBallot(context.Background(), entities.Ballot{
				BallotID:    fmt.Sprintf("ballot-%d", n),
				ElectionID:  "election-1",
				VoterID:     "voter-1",
				CandidateID: "cand-a",
				CastAt:      time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()
	close(outcomes)

	accepted, duplicated := 0, 0
	for err := range outcomes {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, domainerrors.ErrDuplicateVote):
			duplicated++
		default:
			t.Fatalf("unexpected cast error: %v", err)
		}
	}
	if accepted != 1 || duplicated != attempts-1 {
		t.Fatalf("expected exactly one accepted ballot, got %d accepted / %d duplicates", accepted, duplicated)
	}

	count, err := store.CountBallots(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("count ballots failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one stored ballot, got %d", count)
	}
	election, err := store.GetElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if election.Candidates[0].Votes != 1 {
		t.Fatalf("expected one counted vote, got %d", election.Candidates[0].Votes)
	}
}

func TestCastBallotChecksStatusAndCandidate(t *testing.T) {
	planned := seedOngoing("cand-a")
	planned.Status = entities.ElectionStatusPlanned
	store := NewStore([]entities.Election{planned})

	err := store.CastBallot(context.Background(), entities.Ballot{
		BallotID: "b1", ElectionID: "election-1", VoterID: "voter-1", CandidateID: "cand-a",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for planned election, got %v", err)
	}

	store = NewStore([]entities.Election{seedOngoing("cand-a")})
	err = store.CastBallot(context.Background(), entities.Ballot{
		BallotID: "b1", ElectionID: "election-1", VoterID: "voter-1", CandidateID: "cand-x",
	})
	if !errors.Is(err, domainerrors.ErrUnknownCandidate) {
		t.Fatalf("expected ErrUnknownCandidate, got %v", err)
	}
}

func TestEligibilityBySeedHelpers(t *testing.T) {
	store := NewStore(nil)
	store.AddToGlobalRoll("voter-1")
	store.SetClubStatus("club-1", "active")
	store.AddClubMember("club-1", "member-1")

	eligible, err := store.IsEligible(context.Background(), entities.GlobalScope(), "voter-1")
	if err != nil || !eligible {
		t.Fatalf("voter-1 must be on the global roll, got %v %v", eligible, err)
	}
	eligible, _ = store.IsEligible(context.Background(), entities.GlobalScope(), "stranger")
	if eligible {
		t.Fatalf("stranger must not be eligible globally")
	}
	eligible, _ = store.IsEligible(context.Background(), entities.ClubScope("club-1"), "member-1")
	if !eligible {
		t.Fatalf("member-1 must be eligible in club-1")
	}
	eligible, _ = store.IsEligible(context.Background(), entities.ClubScope("club-1"), "voter-1")
	if eligible {
		t.Fatalf("non-member must not be eligible in club scope")
	}

	status, err := store.ClubStatus(context.Background(), "club-1")
	if err != nil || status != "active" {
		t.Fatalf("expected active club status, got %q %v", status, err)
	}
}
