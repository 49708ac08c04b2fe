package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	domainerrors "unionhub/contexts/student-union/membership-ledger/domain/errors"
)

func storeWithClub(members ...string) *Store {
	club := entities.Club{
		ClubID:     "club-1",
		Name:       "Drama Club",
		Status:     entities.ClubStatusActive,
		Leadership: map[entities.LeadershipSlot]string{},
		Budget:     entities.Budget{Allocated: 100, Remaining: 100},
	}
	for _, userID := range members {
		club.Members = append(club.Members, entities.Member{UserID: userID, Role: entities.RoleMember})
	}
	return NewStore([]entities.Club{club})
}

func TestUpdateClubDiscardsStateOnMutateError(t *testing.T) {
	store := storeWithClub("user-1")

	sentinel := errors.New("mutate refused")
	_, err := store.UpdateClub(context.Background(), "club-1", func(club *entities.Club) error {
		club.Budget.Spent = 90
		club.Members = nil
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected mutate error to surface, got %v", err)
	}

	club, err := store.GetClub(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("get club failed: %v", err)
	}
	if club.Budget.Spent != 0 || len(club.Members) != 1 {
		t.Fatalf("failed mutate must leave the club untouched, got %+v", club)
	}
}

func TestUpdateClubReturnsDetachedCopy(t *testing.T) {
	store := storeWithClub("user-1")

	club, err := store.UpdateClub(context.Background(), "club-1", func(club *entities.Club) error {
		club.Leadership[entities.SlotPresident] = "user-1"
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Mutating the returned value must not leak into the store.
	club.Leadership[entities.SlotPresident] = "intruder"
	club.Members[0].UserID = "intruder"

	stored, err := store.GetClub(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("get club failed: %v", err)
	}
	if stored.Leadership[entities.SlotPresident] != "user-1" || stored.Members[0].UserID != "user-1" {
		t.Fatalf("store must hold its own copy, got %+v", stored)
	}
}

func TestInsertRequestAllowsOnePendingPerClubAndUser(t *testing.T) {
	store := storeWithClub()

	first := entities.MembershipRequest{
		RequestID: "req-1", ClubID: "club-1", UserID: "user-1",
		Status: entities.RequestStatusPending, RequestedAt: time.Now().UTC(),
	}
	if err := store.InsertRequest(context.Background(), first); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	dup := first
	dup.RequestID = "req-2"
	if err := store.InsertRequest(context.Background(), dup); !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for second pending request, got %v", err)
	}

	// Same user, different club is fine.
	other := first
	other.RequestID = "req-3"
	other.ClubID = "club-2"
	if err := store.InsertRequest(context.Background(), other); err != nil {
		t.Fatalf("insert into other club failed: %v", err)
	}

	if _, err := store.DecideRequest(context.Background(), "req-1", entities.RequestStatusRejected, "admin-1", time.Now().UTC()); err != nil {
		t.Fatalf("decide failed: %v", err)
	}
	// Once no longer pending, a fresh request is allowed again.
	retry := first
	retry.RequestID = "req-4"
	if err := store.InsertRequest(context.Background(), retry); err != nil {
		t.Fatalf("retry after rejection failed: %v", err)
	}
}

func TestDecideRequestIsSingleShot(t *testing.T) {
	store := storeWithClub()
	request := entities.MembershipRequest{
		RequestID: "req-1", ClubID: "club-1", UserID: "user-1",
		Status: entities.RequestStatusPending, RequestedAt: time.Now().UTC(),
	}
	if err := store.InsertRequest(context.Background(), request); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	decided, err := store.DecideRequest(context.Background(), "req-1", entities.RequestStatusApproved, "admin-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("decide failed: %v", err)
	}
	if decided.Status != entities.RequestStatusApproved || decided.DecidedAt == nil {
		t.Fatalf("unexpected decided request %+v", decided)
	}

	if _, err := store.DecideRequest(context.Background(), "req-1", entities.RequestStatusRejected, "admin-1", time.Now().UTC()); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second decision, got %v", err)
	}
	if _, err := store.DecideRequest(context.Background(), "req-9", entities.RequestStatusApproved, "admin-1", time.Now().UTC()); !errors.Is(err, domainerrors.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestListActiveMemberIDsSorted(t *testing.T) {
	store := storeWithClub("zed", "amare", "martha")

	ids, err := store.ListActiveMemberIDs(context.Background(), "club-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"amare", "martha", "zed"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("expected sorted ids %v, got %v", want, ids)
		}
	}
}
