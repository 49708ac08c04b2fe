package entities

import "testing"

func TestRankedTallyOrdersByVotesThenInsertion(t *testing.T) {
	election := Election{
		Candidates: []Candidate{
			{CandidateID: "a", Name: "Alpha", Votes: 2, Position: 0},
			{CandidateID: "b", Name: "Beta", Votes: 5, Position: 1},
			{CandidateID: "c", Name: "Gamma", Votes: 2, Position: 2},
			{CandidateID: "d", Name: "Delta", Votes: 7, Position: 3},
		},
	}

	tally := election.RankedTally()
	want := []string{"d", "b", "a", "c"}
	if len(tally) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(tally))
	}
	for i, id := range want {
		if tally[i].CandidateID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, tally[i].CandidateID)
		}
		if tally[i].Rank != i+1 {
			t.Fatalf("position %d: expected rank %d, got %d", i, i+1, tally[i].Rank)
		}
	}
}

func TestRankedTallyAllTiedKeepsBallotPaperOrder(t *testing.T) {
	election := Election{
		Candidates: []Candidate{
			{CandidateID: "a", Votes: 3},
			{CandidateID: "b", Votes: 3},
			{CandidateID: "c", Votes: 3},
		},
	}

	tally := election.RankedTally()
	for i, id := range []string{"a", "b", "c"} {
		if tally[i].CandidateID != id {
			t.Fatalf("tied candidates must keep insertion order, got %s at %d", tally[i].CandidateID, i)
		}
	}
}

func TestParseScope(t *testing.T) {
	scope, err := ParseScope("global")
	if err != nil {
		t.Fatalf("parse global failed: %v", err)
	}
	if scope.Kind != ScopeKindGlobal {
		t.Fatalf("expected global kind, got %s", scope.Kind)
	}

	scope, err = ParseScope("club:club-42")
	if err != nil {
		t.Fatalf("parse club scope failed: %v", err)
	}
	if scope.Kind != ScopeKindClub || scope.ClubID != "club-42" {
		t.Fatalf("unexpected club scope %+v", scope)
	}
	if scope.String() != "club:club-42" {
		t.Fatalf("scope must round-trip, got %s", scope.String())
	}

	if _, err := ParseScope("club:"); err == nil {
		t.Fatalf("expected error for club scope without id")
	}
	if _, err := ParseScope("faculty"); err == nil {
		t.Fatalf("expected error for unknown scope kind")
	}
}
