package bootstrap

import (
	"context"

	sessionqueries "unionhub/contexts/identity-access/session-service/application/queries"
	electionentities "unionhub/contexts/student-union/election-engine/domain/entities"
	electionports "unionhub/contexts/student-union/election-engine/ports"
	ledgerqueries "unionhub/contexts/student-union/membership-ledger/application/queries"
	ledgerports "unionhub/contexts/student-union/membership-ledger/ports"
)

// rosterEligibility answers the election engine's eligibility question from
// the other two contexts: the union-wide roll is every active account, the
// club roll is the ledger's active-member set.
type rosterEligibility struct {
	roster   ledgerqueries.RosterUseCase
	accounts sessionqueries.ValidateUseCase
}

func (e rosterEligibility) IsEligible(
	ctx context.Context,
	scope electionentities.Scope,
	voterID string,
) (bool, error) {
	if scope.Kind == electionentities.ScopeKindGlobal {
		return e.accounts.IsActiveAccount(ctx, voterID)
	}
	memberIDs, err := e.roster.ActiveMemberIDs(ctx, scope.ClubID)
	if err != nil {
		return false, err
	}
	for _, memberID := range memberIDs {
		if memberID == voterID {
			return true, nil
		}
	}
	return false, nil
}

// rosterDirectory projects club status for election creation.
type rosterDirectory struct {
	roster ledgerqueries.RosterUseCase
}

func (d rosterDirectory) ClubStatus(ctx context.Context, clubID string) (string, error) {
	club, err := d.roster.GetClub(ctx, clubID)
	if err != nil {
		return "", err
	}
	return string(club.Status), nil
}

// sessionCapabilities hands the ledger its clubs-management capability check.
type sessionCapabilities struct {
	accounts sessionqueries.ValidateUseCase
}

func (c sessionCapabilities) CanManageClubs(ctx context.Context, userID string) (bool, error) {
	return c.accounts.CanManageClubs(ctx, userID)
}

var _ electionports.EligibilityResolver = rosterEligibility{}
var _ electionports.ClubDirectory = rosterDirectory{}
var _ ledgerports.CapabilityChecker = sessionCapabilities{}
