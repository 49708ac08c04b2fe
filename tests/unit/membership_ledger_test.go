package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	membershipledger "unionhub/contexts/student-union/membership-ledger"
	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	domainerrors "unionhub/contexts/student-union/membership-ledger/domain/errors"
	httptransport "unionhub/contexts/student-union/membership-ledger/transport/http"
)

func seedClub(allocated int64, members ...string) entities.Club {
	club := entities.Club{
		ClubID:     "club-1",
		Name:       "Chess Club",
		Category:   "academic",
		Status:     entities.ClubStatusActive,
		Leadership: map[entities.LeadershipSlot]string{},
		Budget:     entities.Budget{Allocated: allocated},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	club.Budget.Recompute()
	for _, userID := range members {
		club.Members = append(club.Members, entities.Member{
			UserID:   userID,
			Role:     entities.RoleMember,
			JoinedAt: time.Now().UTC(),
		})
	}
	return club
}

func TestMembershipJoinApproveAddsMember(t *testing.T) {
	module := membershipledger.NewInMemoryModule([]entities.Club{seedClub(0)}, nil)
	module.Store.GrantManager("admin-1")

	request, err := module.Handler.RequestJoinHandler(context.Background(), "club-1", httptransport.JoinRequestBody{
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("request join failed: %v", err)
	}
	if request.Status != "pending" {
		t.Fatalf("expected pending request, got %s", request.Status)
	}

	// A second pending request from the same user must be refused.
	_, err = module.Handler.RequestJoinHandler(context.Background(), "club-1", httptransport.JoinRequestBody{
		UserID: "user-1",
	})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate pending request, got %v", err)
	}

	decided, err := module.Handler.ApproveRequestHandler(context.Background(), "club-1", request.RequestID, "admin-1")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if decided.Status != "approved" || decided.DecidedBy != "admin-1" {
		t.Fatalf("unexpected decision %s by %s", decided.Status, decided.DecidedBy)
	}

	club, err := module.Handler.GetClubHandler(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("get club failed: %v", err)
	}
	if len(club.Members) != 1 || club.Members[0].UserID != "user-1" || club.Members[0].Role != "member" {
		t.Fatalf("expected user-1 on roster as member, got %+v", club.Members)
	}

	// Active members cannot file a fresh request.
	if _, err := module.Handler.RequestJoinHandler(context.Background(), "club-1", httptransport.JoinRequestBody{UserID: "user-1"}); !errors.Is(err, domainerrors.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestMembershipApproveRetryConvergesAfterPartialFailure(t *testing.T) {
	module := membershipledger.NewInMemoryModule([]entities.Club{seedClub(0)}, nil)
	module.Store.GrantManager("admin-1")

	request, err := module.Handler.RequestJoinHandler(context.Background(), "club-1", httptransport.JoinRequestBody{UserID: "user-1"})
	if err != nil {
		t.Fatalf("request join failed: %v", err)
	}

	// A prior approve attempt appended the member and then failed before the
	// request was decided; the request is still pending.
	if _, err := module.Store.UpdateClub(context.Background(), "club-1", func(club *entities.Club) error {
		club.Members = append(club.Members, entities.Member{
			UserID:   "user-1",
			Role:     entities.RoleMember,
			JoinedAt: time.Now().UTC(),
		})
		return nil
	}); err != nil {
		t.Fatalf("seed partial roster state failed: %v", err)
	}

	decided, err := module.Handler.ApproveRequestHandler(context.Background(), "club-1", request.RequestID, "admin-1")
	if err != nil {
		t.Fatalf("approve retry must converge, got %v", err)
	}
	if decided.Status != "approved" {
		t.Fatalf("expected approved request, got %s", decided.Status)
	}

	club, err := module.Handler.GetClubHandler(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("get club failed: %v", err)
	}
	if len(club.Members) != 1 || club.Members[0].UserID != "user-1" {
		t.Fatalf("expected a single roster entry for user-1, got %+v", club.Members)
	}
}

func TestMembershipDecisionRequiresCapabilityAndPendingStatus(t *testing.T) {
	module := membershipledger.NewInMemoryModule([]entities.Club{seedClub(0)}, nil)
	module.Store.GrantManager("admin-1")

	request, err := module.Handler.RequestJoinHandler(context.Background(), "club-1", httptransport.JoinRequestBody{UserID: "user-1"})
	if err != nil {
		t.Fatalf("request join failed: %v", err)
	}

	if _, err := module.Handler.ApproveRequestHandler(context.Background(), "club-1", request.RequestID, "user-9"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for approver without capability, got %v", err)
	}

	if _, err := module.Handler.RejectRequestHandler(context.Background(), "club-1", request.RequestID, "admin-1"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	club, err := module.Handler.GetClubHandler(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("get club failed: %v", err)
	}
	if len(club.Members) != 0 {
		t.Fatalf("rejection must leave the roster untouched, got %+v", club.Members)
	}

	// Deciding a settled request again is an invalid transition.
	if _, err := module.Handler.ApproveRequestHandler(context.Background(), "club-1", request.RequestID, "admin-1"); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition re-deciding request, got %v", err)
	}
}

func TestLeadershipReassignmentDemotesPriorHolder(t *testing.T) {
	module := membershipledger.NewInMemoryModule([]entities.Club{seedClub(0, "user-2", "user-3")}, nil)

	club, err := module.Handler.AssignLeadershipHandler(context.Background(), "club-1", httptransport.AssignLeadershipRequest{
		Slot:   "president",
		UserID: "user-2",
	})
	if err != nil {
		t.Fatalf("assign president failed: %v", err)
	}
	if club.Leadership["president"] != "user-2" {
		t.Fatalf("expected user-2 as president, got %v", club.Leadership)
	}

	club, err = module.Handler.AssignLeadershipHandler(context.Background(), "club-1", httptransport.AssignLeadershipRequest{
		Slot:   "president",
		UserID: "user-3",
	})
	if err != nil {
		t.Fatalf("reassign president failed: %v", err)
	}
	if club.Leadership["president"] != "user-3" {
		t.Fatalf("expected user-3 as president, got %v", club.Leadership)
	}
	roles := map[string]string{}
	for _, member := range club.Members {
		roles[member.UserID] = member.Role
	}
	if roles["user-3"] != "president" {
		t.Fatalf("expected user-3 role president, got %s", roles["user-3"])
	}
	if roles["user-2"] != "member" {
		t.Fatalf("prior holder must be demoted to member, got %s", roles["user-2"])
	}
}

func TestLeadershipPriorHolderKeepsRoleWhileHoldingAnotherSlot(t *testing.T) {
	module := membershipledger.NewInMemoryModule([]entities.Club{seedClub(0, "user-2", "user-3")}, nil)

	for _, slot := range []string{"president", "treasurer"} {
		if _, err := module.Handler.AssignLeadershipHandler(context.Background(), "club-1", httptransport.AssignLeadershipRequest{
			Slot:   slot,
			UserID: "user-2",
		}); err != nil {
			t.Fatalf("assign %s failed: %v", slot, err)
		}
	}

	club, err := module.Handler.AssignLeadershipHandler(context.Background(), "club-1", httptransport.AssignLeadershipRequest{
		Slot:   "president",
		UserID: "user-3",
	})
	if err != nil {
		t.Fatalf("reassign president failed: %v", err)
	}
	if club.Leadership["treasurer"] != "user-2" {
		t.Fatalf("user-2 must keep the treasurer slot, got %v", club.Leadership)
	}
	for _, member := range club.Members {
		if member.UserID == "user-2" && member.Role == "member" {
			t.Fatalf("user-2 still holds treasurer and must not be demoted")
		}
	}
}

func TestLeadershipAssignValidation(t *testing.T) {
	module := membershipledger.NewInMemoryModule([]entities.Club{seedClub(0, "user-2")}, nil)

	_, err := module.Handler.AssignLeadershipHandler(context.Background(), "club-1", httptransport.AssignLeadershipRequest{
		Slot:   "chancellor",
		UserID: "user-2",
	})
	if !errors.Is(err, domainerrors.ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}

	_, err = module.Handler.AssignLeadershipHandler(context.Background(), "club-1", httptransport.AssignLeadershipRequest{
		Slot:   "president",
		UserID: "outsider",
	})
	if !errors.Is(err, domainerrors.ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}

func TestBudgetSpendAndAllocateKeepInvariant(t *testing.T) {
	module := membershipledger.NewInMemoryModule([]entities.Club{seedClub(1000)}, nil)

	budget, err := module.Handler.RecordSpendHandler(context.Background(), "club-1", httptransport.SpendRequest{Amount: 700})
	if err != nil {
		t.Fatalf("spend failed: %v", err)
	}
	if budget.Spent != 700 || budget.Remaining != 300 {
		t.Fatalf("expected spent=700 remaining=300, got %+v", budget)
	}

	if _, err := module.Handler.RecordSpendHandler(context.Background(), "club-1", httptransport.SpendRequest{Amount: 400}); !errors.Is(err, domainerrors.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	club, err := module.Handler.GetClubHandler(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("get club failed: %v", err)
	}
	if club.Budget.Spent != 700 || club.Budget.Remaining != 300 {
		t.Fatalf("rejected spend must not change the budget, got %+v", club.Budget)
	}

	// Allocation can never drop below what is already spent.
	if _, err := module.Handler.AllocateBudgetHandler(context.Background(), "club-1", httptransport.AllocateRequest{Amount: 500}); !errors.Is(err, domainerrors.ErrInvalidLedgerInput) {
		t.Fatalf("expected ErrInvalidLedgerInput shrinking below spent, got %v", err)
	}
	budget, err = module.Handler.AllocateBudgetHandler(context.Background(), "club-1", httptransport.AllocateRequest{Amount: 1500})
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if budget.Allocated != 1500 || budget.Remaining != 800 {
		t.Fatalf("expected allocated=1500 remaining=800, got %+v", budget)
	}

	if _, err := module.Handler.RecordSpendHandler(context.Background(), "club-1", httptransport.SpendRequest{Amount: -5}); !errors.Is(err, domainerrors.ErrInvalidLedgerInput) {
		t.Fatalf("expected ErrInvalidLedgerInput for negative spend, got %v", err)
	}
}
