package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"unionhub/contexts/student-union/election-engine/domain/entities"
	domainerrors "unionhub/contexts/student-union/election-engine/domain/errors"
	"unionhub/contexts/student-union/election-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter backing every election-engine port. The
// single mutex is what makes CastBallot's check-and-insert and the
// conditional status transitions atomic.
type Store struct {
	mu sync.RWMutex

	elections map[string]entities.Election
	ballots   map[string]entities.Ballot
	// votedIndex mirrors ballots as voter_id -> set of election ids; it is a
	// derived index and must never disagree with the ballots map.
	votedIndex map[string]map[string]struct{}
	outbox     map[string]outboxRecord

	globalRoll  map[string]struct{}
	clubMembers map[string]map[string]struct{}
	clubStatus  map[string]string
}

func NewStore(seed []entities.Election) *Store {
	elections := make(map[string]entities.Election, len(seed))
	for _, election := range seed {
		elections[election.ElectionID] = election
	}
	return &Store{
		elections:   elections,
		ballots:     make(map[string]entities.Ballot),
		votedIndex:  make(map[string]map[string]struct{}),
		outbox:      make(map[string]outboxRecord),
		globalRoll:  make(map[string]struct{}),
		clubMembers: make(map[string]map[string]struct{}),
		clubStatus:  make(map[string]string),
	}
}

// Seed helpers for tests and in-memory wiring.

func (s *Store) AddToGlobalRoll(voterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalRoll[strings.TrimSpace(voterID)] = struct{}{}
}

func (s *Store) SetClubStatus(clubID string, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubStatus[strings.TrimSpace(clubID)] = strings.TrimSpace(status)
}

func (s *Store) AddClubMember(clubID string, voterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clubID = strings.TrimSpace(clubID)
	if s.clubMembers[clubID] == nil {
		s.clubMembers[clubID] = make(map[string]struct{})
	}
	s.clubMembers[clubID][strings.TrimSpace(voterID)] = struct{}{}
}

func (s *Store) InsertElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[election.ElectionID]; exists {
		return domainerrors.ErrConflict
	}
	s.elections[election.ElectionID] = cloneElection(election)
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return cloneElection(election), nil
}

func (s *Store) ListElections(_ context.Context) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0, len(s.elections))
	for _, election := range s.elections {
		items = append(items, cloneElection(election))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ListElectionsByStatus(_ context.Context, status entities.ElectionStatus) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if election.Status == status {
			items = append(items, cloneElection(election))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	electionID string,
	from []entities.ElectionStatus,
	to entities.ElectionStatus,
	at time.Time,
) (entities.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	allowed := false
	for _, status := range from {
		if election.Status == status {
			allowed = true
			break
		}
	}
	if !allowed || election.Announced {
		return entities.Election{}, domainerrors.ErrInvalidTransition
	}
	election.Status = to
	election.UpdatedAt = at.UTC()
	s.elections[election.ElectionID] = election
	return cloneElection(election), nil
}

func (s *Store) FreezeResults(
	_ context.Context,
	electionID string,
	tally []entities.TallyEntry,
	announcedAt time.Time,
) (entities.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	if election.Announced {
		return entities.Election{}, domainerrors.ErrAlreadyAnnounced
	}
	if election.Status != entities.ElectionStatusCompleted {
		return entities.Election{}, domainerrors.ErrInvalidTransition
	}
	at := announcedAt.UTC()
	election.Announced = true
	election.AnnouncedAt = &at
	election.Results = append([]entities.TallyEntry(nil), tally...)
	election.UpdatedAt = at
	s.elections[election.ElectionID] = election
	return cloneElection(election), nil
}

// CastBallot is the engine's single write race worth guarding: the duplicate
// check, ballot insert, counter increment, and voted-set append happen under
// one lock so two concurrent casts by the same voter produce exactly one
// ballot.
func (s *Store) CastBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	electionID := strings.TrimSpace(ballot.ElectionID)
	voterID := strings.TrimSpace(ballot.VoterID)

	election, ok := s.elections[electionID]
	if !ok {
		return domainerrors.ErrElectionNotFound
	}
	if election.Status != entities.ElectionStatusOngoing {
		return domainerrors.ErrInvalidTransition
	}
	if voted, ok := s.votedIndex[voterID]; ok {
		if _, dup := voted[electionID]; dup {
			return domainerrors.ErrDuplicateVote
		}
	}

	matched := false
	for i := range election.Candidates {
		if election.Candidates[i].CandidateID == strings.TrimSpace(ballot.CandidateID) {
			election.Candidates[i].Votes++
			matched = true
			break
		}
	}
	if !matched {
		return domainerrors.ErrUnknownCandidate
	}

	s.ballots[ballot.BallotID] = ballot
	if s.votedIndex[voterID] == nil {
		s.votedIndex[voterID] = make(map[string]struct{})
	}
	s.votedIndex[voterID][electionID] = struct{}{}
	election.UpdatedAt = ballot.CastAt.UTC()
	s.elections[electionID] = election
	return nil
}

func (s *Store) HasVoted(_ context.Context, electionID string, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voted, ok := s.votedIndex[strings.TrimSpace(voterID)]
	if !ok {
		return false, nil
	}
	_, dup := voted[strings.TrimSpace(electionID)]
	return dup, nil
}

func (s *Store) CountBallots(_ context.Context, electionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, ballot := range s.ballots {
		if ballot.ElectionID == strings.TrimSpace(electionID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListVotedElections(_ context.Context, voterID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voted := s.votedIndex[strings.TrimSpace(voterID)]
	items := make([]string, 0, len(voted))
	for electionID := range voted {
		items = append(items, electionID)
	}
	sort.Strings(items)
	return items, nil
}

func (s *Store) IsEligible(_ context.Context, scope entities.Scope, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voterID = strings.TrimSpace(voterID)
	if scope.Kind == entities.ScopeKindClub {
		members, ok := s.clubMembers[scope.ClubID]
		if !ok {
			return false, nil
		}
		_, eligible := members[voterID]
		return eligible, nil
	}
	_, eligible := s.globalRoll[voterID]
	return eligible, nil
}

func (s *Store) ClubStatus(_ context.Context, clubID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.clubStatus[strings.TrimSpace(clubID)]
	if !ok {
		return "", domainerrors.ErrClubNotVotable
	}
	return status, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.outbox[envelope.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

// PendingOutboxTypes lists unpublished event types, oldest first. Test helper.
func (s *Store) PendingOutboxTypes() []string {
	messages, _ := s.ListPendingOutbox(context.Background(), 0)
	types := make([]string, 0, len(messages))
	for _, message := range messages {
		types = append(types, message.EventType)
	}
	return types
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneElection(election entities.Election) entities.Election {
	cloned := election
	cloned.Candidates = append([]entities.Candidate(nil), election.Candidates...)
	cloned.Results = append([]entities.TallyEntry(nil), election.Results...)
	if election.AnnouncedAt != nil {
		at := *election.AnnouncedAt
		cloned.AnnouncedAt = &at
	}
	return cloned
}

var _ ports.ElectionRepository = (*Store)(nil)
var _ ports.BallotRepository = (*Store)(nil)
var _ ports.EligibilityResolver = (*Store)(nil)
var _ ports.ClubDirectory = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
