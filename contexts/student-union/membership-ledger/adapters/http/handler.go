package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"unionhub/contexts/student-union/membership-ledger/application/commands"
	"unionhub/contexts/student-union/membership-ledger/application/queries"
	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	httptransport "unionhub/contexts/student-union/membership-ledger/transport/http"
)

type Handler struct {
	Membership commands.MembershipUseCase
	Leadership commands.LeadershipUseCase
	Budget     commands.BudgetUseCase
	Roster     queries.RosterUseCase
	Logger     *slog.Logger
}

func (h Handler) RequestJoinHandler(
	ctx context.Context,
	clubID string,
	req httptransport.JoinRequestBody,
) (httptransport.MembershipRequestResponse, error) {
	request, err := h.Membership.RequestJoin(ctx, clubID, req.UserID)
	if err != nil {
		return httptransport.MembershipRequestResponse{}, err
	}
	return mapRequest(request), nil
}

func (h Handler) ApproveRequestHandler(
	ctx context.Context,
	clubID string,
	requestID string,
	approverID string,
) (httptransport.MembershipRequestResponse, error) {
	request, err := h.Membership.Approve(ctx, clubID, requestID, approverID)
	if err != nil {
		return httptransport.MembershipRequestResponse{}, err
	}
	return mapRequest(request), nil
}

func (h Handler) RejectRequestHandler(
	ctx context.Context,
	clubID string,
	requestID string,
	approverID string,
) (httptransport.MembershipRequestResponse, error) {
	request, err := h.Membership.Reject(ctx, clubID, requestID, approverID)
	if err != nil {
		return httptransport.MembershipRequestResponse{}, err
	}
	return mapRequest(request), nil
}

func (h Handler) AssignLeadershipHandler(
	ctx context.Context,
	clubID string,
	req httptransport.AssignLeadershipRequest,
) (httptransport.ClubResponse, error) {
	club, err := h.Leadership.Assign(ctx, clubID, req.Slot, req.UserID)
	if err != nil {
		return httptransport.ClubResponse{}, err
	}
	return mapClub(club), nil
}

func (h Handler) RecordSpendHandler(
	ctx context.Context,
	clubID string,
	req httptransport.SpendRequest,
) (httptransport.BudgetResponse, error) {
	budget, err := h.Budget.RecordSpend(ctx, clubID, req.Amount)
	if err != nil {
		return httptransport.BudgetResponse{}, err
	}
	return mapBudget(budget), nil
}

func (h Handler) AllocateBudgetHandler(
	ctx context.Context,
	clubID string,
	req httptransport.AllocateRequest,
) (httptransport.BudgetResponse, error) {
	budget, err := h.Budget.Allocate(ctx, clubID, req.Amount)
	if err != nil {
		return httptransport.BudgetResponse{}, err
	}
	return mapBudget(budget), nil
}

func (h Handler) GetClubHandler(ctx context.Context, clubID string) (httptransport.ClubResponse, error) {
	club, err := h.Roster.GetClub(ctx, clubID)
	if err != nil {
		return httptransport.ClubResponse{}, err
	}
	return mapClub(club), nil
}

func (h Handler) ListPendingRequestsHandler(ctx context.Context, clubID string) (httptransport.RequestListResponse, error) {
	requests, err := h.Roster.PendingRequests(ctx, clubID)
	if err != nil {
		return httptransport.RequestListResponse{}, err
	}
	items := make([]httptransport.MembershipRequestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, mapRequest(request))
	}
	return httptransport.RequestListResponse{Items: items}, nil
}

func (h Handler) ListMemberIDsHandler(ctx context.Context, clubID string) (httptransport.MemberIDsResponse, error) {
	ids, err := h.Roster.ActiveMemberIDs(ctx, clubID)
	if err != nil {
		return httptransport.MemberIDsResponse{}, err
	}
	return httptransport.MemberIDsResponse{
		ClubID:    clubID,
		MemberIDs: ids,
	}, nil
}

func mapRequest(request entities.MembershipRequest) httptransport.MembershipRequestResponse {
	response := httptransport.MembershipRequestResponse{
		RequestID:   request.RequestID,
		ClubID:      request.ClubID,
		UserID:      request.UserID,
		Status:      string(request.Status),
		RequestedAt: request.RequestedAt.Format(time.RFC3339),
		DecidedBy:   request.DecidedBy,
	}
	if request.DecidedAt != nil {
		response.DecidedAt = request.DecidedAt.Format(time.RFC3339)
	}
	return response
}

func mapClub(club entities.Club) httptransport.ClubResponse {
	members := make([]httptransport.MemberResponse, 0, len(club.Members))
	for _, member := range club.Members {
		members = append(members, httptransport.MemberResponse{
			UserID:   member.UserID,
			Role:     string(member.Role),
			JoinedAt: member.JoinedAt.Format(time.RFC3339),
		})
	}
	leadership := make(map[string]string, len(club.Leadership))
	for slot, holder := range club.Leadership {
		leadership[string(slot)] = holder
	}
	return httptransport.ClubResponse{
		ClubID:     club.ClubID,
		Name:       club.Name,
		Category:   club.Category,
		Status:     string(club.Status),
		Members:    members,
		Leadership: leadership,
		Budget:     mapBudget(club.Budget),
	}
}

func mapBudget(budget entities.Budget) httptransport.BudgetResponse {
	return httptransport.BudgetResponse{
		Allocated: budget.Allocated,
		Spent:     budget.Spent,
		Remaining: budget.Remaining,
	}
}
