package queries

import (
	"context"
	"strings"

	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	"unionhub/contexts/student-union/membership-ledger/ports"
)

type RosterUseCase struct {
	Ledger ports.LedgerRepository
}

func (uc RosterUseCase) GetClub(ctx context.Context, clubID string) (entities.Club, error) {
	return uc.Ledger.GetClub(ctx, strings.TrimSpace(clubID))
}

// ActiveMemberIDs is the eligible set for club-scoped elections.
func (uc RosterUseCase) ActiveMemberIDs(ctx context.Context, clubID string) ([]string, error) {
	return uc.Ledger.ListActiveMemberIDs(ctx, strings.TrimSpace(clubID))
}

func (uc RosterUseCase) PendingRequests(ctx context.Context, clubID string) ([]entities.MembershipRequest, error) {
	requests, err := uc.Ledger.ListRequestsByClub(ctx, strings.TrimSpace(clubID))
	if err != nil {
		return nil, err
	}
	pending := make([]entities.MembershipRequest, 0, len(requests))
	for _, request := range requests {
		if request.Status == entities.RequestStatusPending {
			pending = append(pending, request)
		}
	}
	return pending, nil
}
