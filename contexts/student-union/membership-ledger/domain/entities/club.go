package entities

import (
	"strings"
	"time"
)

type ClubStatus string

const (
	ClubStatusPendingApproval ClubStatus = "pending_approval"
	ClubStatusActive          ClubStatus = "active"
	ClubStatusInactive        ClubStatus = "inactive"
	ClubStatusSuspended       ClubStatus = "suspended"
)

type MemberRole string

const (
	RoleMember        MemberRole = "member"
	RoleOfficer       MemberRole = "officer"
	RolePresident     MemberRole = "president"
	RoleVicePresident MemberRole = "vice_president"
	RoleSecretary     MemberRole = "secretary"
	RoleTreasurer     MemberRole = "treasurer"
)

// LeadershipSlot is one of the fixed officer seats a club carries. Slots map
// one-to-one onto the officer roles; membership of the map is what makes the
// one-holder-per-slot rule structural.
type LeadershipSlot string

const (
	SlotPresident     LeadershipSlot = "president"
	SlotVicePresident LeadershipSlot = "vice_president"
	SlotSecretary     LeadershipSlot = "secretary"
	SlotTreasurer     LeadershipSlot = "treasurer"
)

// ParseLeadershipSlot validates the wire form of a slot name.
func ParseLeadershipSlot(raw string) (LeadershipSlot, bool) {
	switch LeadershipSlot(strings.TrimSpace(raw)) {
	case SlotPresident:
		return SlotPresident, true
	case SlotVicePresident:
		return SlotVicePresident, true
	case SlotSecretary:
		return SlotSecretary, true
	case SlotTreasurer:
		return SlotTreasurer, true
	default:
		return "", false
	}
}

func (s LeadershipSlot) Role() MemberRole {
	return MemberRole(s)
}

type Member struct {
	UserID   string
	Role     MemberRole
	JoinedAt time.Time
}

// Budget keeps remaining as a stored value recomputed whenever either operand
// changes, so persisted snapshots always satisfy remaining = allocated - spent.
type Budget struct {
	Allocated int64
	Spent     int64
	Remaining int64
}

func (b *Budget) Recompute() {
	b.Remaining = b.Allocated - b.Spent
}

type Club struct {
	ClubID     string
	Name       string
	Category   string
	Status     ClubStatus
	Members    []Member
	Leadership map[LeadershipSlot]string
	Budget     Budget
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MemberByID returns the member entry and whether the user is on the roster.
func (c Club) MemberByID(userID string) (Member, bool) {
	userID = strings.TrimSpace(userID)
	for _, member := range c.Members {
		if member.UserID == userID {
			return member, true
		}
	}
	return Member{}, false
}

// HoldsAnySlot reports whether the user currently holds a leadership seat.
func (c Club) HoldsAnySlot(userID string) bool {
	userID = strings.TrimSpace(userID)
	for _, holder := range c.Leadership {
		if holder == userID {
			return true
		}
	}
	return false
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// MembershipRequest is terminal once approved or rejected; approval is the
// only path that adds a roster entry.
type MembershipRequest struct {
	RequestID   string
	ClubID      string
	UserID      string
	Status      RequestStatus
	RequestedAt time.Time
	DecidedAt   *time.Time
	DecidedBy   string
}
