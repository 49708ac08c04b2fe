package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	domainerrors "unionhub/contexts/student-union/membership-ledger/domain/errors"
	"unionhub/contexts/student-union/membership-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter backing every membership-ledger port. The
// single mutex makes UpdateClub's read-modify-write and DecideRequest's
// conditional transition atomic.
type Store struct {
	mu sync.RWMutex

	clubs    map[string]entities.Club
	requests map[string]entities.MembershipRequest
	outbox   map[string]outboxRecord

	managers map[string]struct{}
}

func NewStore(seed []entities.Club) *Store {
	clubs := make(map[string]entities.Club, len(seed))
	for _, club := range seed {
		clubs[club.ClubID] = cloneClub(club)
	}
	return &Store{
		clubs:    clubs,
		requests: make(map[string]entities.MembershipRequest),
		outbox:   make(map[string]outboxRecord),
		managers: make(map[string]struct{}),
	}
}

// GrantManager marks a user as holding the clubs-management capability.
// Seed helper for tests and in-memory wiring.
func (s *Store) GrantManager(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[strings.TrimSpace(userID)] = struct{}{}
}

func (s *Store) CanManageClubs(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.managers[strings.TrimSpace(userID)]
	return ok, nil
}

func (s *Store) InsertClub(_ context.Context, club entities.Club) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clubs[club.ClubID]; exists {
		return domainerrors.ErrConflict
	}
	s.clubs[club.ClubID] = cloneClub(club)
	return nil
}

func (s *Store) GetClub(_ context.Context, clubID string) (entities.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	club, ok := s.clubs[strings.TrimSpace(clubID)]
	if !ok {
		return entities.Club{}, domainerrors.ErrClubNotFound
	}
	return cloneClub(club), nil
}

func (s *Store) UpdateClub(
	_ context.Context,
	clubID string,
	mutate func(*entities.Club) error,
) (entities.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	club, ok := s.clubs[strings.TrimSpace(clubID)]
	if !ok {
		return entities.Club{}, domainerrors.ErrClubNotFound
	}
	working := cloneClub(club)
	if err := mutate(&working); err != nil {
		return entities.Club{}, err
	}
	working.UpdatedAt = time.Now().UTC()
	s.clubs[working.ClubID] = cloneClub(working)
	return working, nil
}

func (s *Store) ListActiveMemberIDs(_ context.Context, clubID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	club, ok := s.clubs[strings.TrimSpace(clubID)]
	if !ok {
		return nil, domainerrors.ErrClubNotFound
	}
	ids := make([]string, 0, len(club.Members))
	for _, member := range club.Members {
		ids = append(ids, member.UserID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) InsertRequest(_ context.Context, request entities.MembershipRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.ClubID == request.ClubID &&
			existing.UserID == request.UserID &&
			existing.Status == entities.RequestStatusPending {
			return domainerrors.ErrConflict
		}
	}
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) GetRequest(_ context.Context, requestID string) (entities.MembershipRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[strings.TrimSpace(requestID)]
	if !ok {
		return entities.MembershipRequest{}, domainerrors.ErrRequestNotFound
	}
	return request, nil
}

func (s *Store) ListRequestsByClub(_ context.Context, clubID string) ([]entities.MembershipRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.MembershipRequest, 0)
	for _, request := range s.requests {
		if request.ClubID == strings.TrimSpace(clubID) {
			items = append(items, request)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].RequestedAt.Before(items[j].RequestedAt)
	})
	return items, nil
}

func (s *Store) DecideRequest(
	_ context.Context,
	requestID string,
	status entities.RequestStatus,
	decidedBy string,
	decidedAt time.Time,
) (entities.MembershipRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[strings.TrimSpace(requestID)]
	if !ok {
		return entities.MembershipRequest{}, domainerrors.ErrRequestNotFound
	}
	if request.Status != entities.RequestStatusPending {
		return entities.MembershipRequest{}, domainerrors.ErrInvalidTransition
	}
	at := decidedAt.UTC()
	request.Status = status
	request.DecidedBy = strings.TrimSpace(decidedBy)
	request.DecidedAt = &at
	s.requests[request.RequestID] = request
	return request, nil
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

func cloneClub(club entities.Club) entities.Club {
	cloned := club
	cloned.Members = append([]entities.Member(nil), club.Members...)
	cloned.Leadership = make(map[entities.LeadershipSlot]string, len(club.Leadership))
	for slot, holder := range club.Leadership {
		cloned.Leadership[slot] = holder
	}
	return cloned
}

var _ ports.LedgerRepository = (*Store)(nil)
var _ ports.CapabilityChecker = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
