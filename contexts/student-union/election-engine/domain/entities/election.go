package entities

import (
	"fmt"
	"strings"
	"time"
)

type ElectionStatus string

const (
	ElectionStatusPlanned   ElectionStatus = "planned"
	ElectionStatusOngoing   ElectionStatus = "ongoing"
	ElectionStatusCompleted ElectionStatus = "completed"
	ElectionStatusCancelled ElectionStatus = "cancelled"
)

type ScopeKind string

const (
	ScopeKindGlobal ScopeKind = "global"
	ScopeKindClub   ScopeKind = "club"
)

// Scope identifies the voter roll an election draws from: the union-wide
// roll ("global") or a single club's active members ("club:<club_id>").
type Scope struct {
	Kind   ScopeKind
	ClubID string
}

func GlobalScope() Scope {
	return Scope{Kind: ScopeKindGlobal}
}

func ClubScope(clubID string) Scope {
	return Scope{Kind: ScopeKindClub, ClubID: strings.TrimSpace(clubID)}
}

// ParseScope accepts the persisted wire form: "global" or "club:<club_id>".
func ParseScope(raw string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == string(ScopeKindGlobal) {
		return GlobalScope(), nil
	}
	if clubID, ok := strings.CutPrefix(raw, "club:"); ok && strings.TrimSpace(clubID) != "" {
		return ClubScope(clubID), nil
	}
	return Scope{}, fmt.Errorf("unrecognized election scope %q", raw)
}

func (s Scope) String() string {
	if s.Kind == ScopeKindClub {
		return "club:" + s.ClubID
	}
	return string(ScopeKindGlobal)
}

// Candidate keeps its zero-based listing position so ranked tallies can break
// ties by original insertion order.
type Candidate struct {
	CandidateID string
	Name        string
	Votes       int
	Position    int
}

// TallyEntry is one row of a ranked tally. Rank is 1-based and shared between
// the frozen announce result and live tally reads.
type TallyEntry struct {
	CandidateID string
	Name        string
	Votes       int
	Rank        int
}

type Election struct {
	ElectionID  string
	Title       string
	Scope       Scope
	Candidates  []Candidate
	Status      ElectionStatus
	OpensAt     time.Time
	ClosesAt    time.Time
	Announced   bool
	AnnouncedAt *time.Time
	// Results holds the ranked tally frozen at first announce; nil before.
	Results   []TallyEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CandidateByID returns the candidate and whether it is on the ballot paper.
func (e Election) CandidateByID(candidateID string) (Candidate, bool) {
	candidateID = strings.TrimSpace(candidateID)
	for _, candidate := range e.Candidates {
		if candidate.CandidateID == candidateID {
			return candidate, true
		}
	}
	return Candidate{}, false
}

// RankedTally orders candidates by vote count descending; ties keep the
// original candidate-list insertion order. The sort is stable by
// construction: candidates are walked in position order and inserted behind
// every strictly greater count.
func (e Election) RankedTally() []TallyEntry {
	entries := make([]TallyEntry, 0, len(e.Candidates))
	for _, candidate := range e.Candidates {
		inserted := false
		for i, existing := range entries {
			if candidate.Votes > existing.Votes {
				entries = append(entries[:i], append([]TallyEntry{{
					CandidateID: candidate.CandidateID,
					Name:        candidate.Name,
					Votes:       candidate.Votes,
				}}, entries[i:]...)...)
				inserted = true
				break
			}
		}
		if !inserted {
			entries = append(entries, TallyEntry{
				CandidateID: candidate.CandidateID,
				Name:        candidate.Name,
				Votes:       candidate.Votes,
			})
		}
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Ballot is the immutable proof that a voter cast a vote in an election.
// Existence of a ballot for (election_id, voter_id) is the sole authority for
// "already voted"; the voter's voted-set is a derived index.
type Ballot struct {
	BallotID    string
	ElectionID  string
	VoterID     string
	CandidateID string
	CastAt      time.Time
}
