package entities

import (
	"strings"
	"time"
)

// UserRole mirrors the portal's account role vocabulary. Roles are stored as
// plain strings so the set can grow without a migration; ParseUserRole guards
// the write path.
type UserRole string

const (
	RoleStudent           UserRole = "student"
	RoleAdmin             UserRole = "admin"
	RolePresident         UserRole = "president"
	RoleStudentDin        UserRole = "student_din"
	RoleVicePresident     UserRole = "vice_president"
	RoleSecretary         UserRole = "secretary"
	RoleSpeaker           UserRole = "speaker"
	RoleAcademicAffairs   UserRole = "academic_affairs"
	RoleGeneralService    UserRole = "general_service"
	RoleDiningServices    UserRole = "dining_services"
	RoleSportsCulture     UserRole = "sports_culture"
	RoleClubsAssociations UserRole = "clubs_associations"
)

var knownRoles = map[UserRole]struct{}{
	RoleStudent:           {},
	RoleAdmin:             {},
	RolePresident:         {},
	RoleStudentDin:        {},
	RoleVicePresident:     {},
	RoleSecretary:         {},
	RoleSpeaker:           {},
	RoleAcademicAffairs:   {},
	RoleGeneralService:    {},
	RoleDiningServices:    {},
	RoleSportsCulture:     {},
	RoleClubsAssociations: {},
}

// ParseUserRole validates the wire form of a role. Empty input defaults to
// student.
func ParseUserRole(raw string) (UserRole, bool) {
	trimmed := UserRole(strings.TrimSpace(raw))
	if trimmed == "" {
		return RoleStudent, true
	}
	if _, ok := knownRoles[trimmed]; !ok {
		return "", false
	}
	return trimmed, true
}

type User struct {
	UserID       string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Admin        bool
	Active       bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// CanManageClubs is the capability claim consumed by the membership ledger:
// the clubs-and-associations officer and admins may decide join requests.
func (u User) CanManageClubs() bool {
	return u.Admin || u.Role == RoleClubsAssociations
}

// Session is one issued token's server-side record. Revocation is one-way;
// a revoked or expired session never validates again.
type Session struct {
	SessionID string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

func (s Session) Revoked() bool {
	return s.RevokedAt != nil
}

func (s Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal is the validated caller identity handed to transport and to the
// other contexts.
type Principal struct {
	UserID         string
	Name           string
	Role           UserRole
	Admin          bool
	CanManageClubs bool
}
