package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "unionhub/contexts/student-union/membership-ledger/application"
	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	domainerrors "unionhub/contexts/student-union/membership-ledger/domain/errors"
	"unionhub/contexts/student-union/membership-ledger/ports"
)

// MembershipUseCase runs the join-request workflow: request, approve, reject.
// Approval is the only path that creates a roster entry.
type MembershipUseCase struct {
	Ledger       ports.LedgerRepository
	Capabilities ports.CapabilityChecker
	Outbox       ports.OutboxWriter
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// RequestJoin files a pending membership request. A user may hold at most one
// pending request per club, and active members cannot re-request.
func (uc MembershipUseCase) RequestJoin(ctx context.Context, clubID string, userID string) (entities.MembershipRequest, error) {
	logger := application.ResolveLogger(uc.Logger)
	clubID = strings.TrimSpace(clubID)
	userID = strings.TrimSpace(userID)
	if clubID == "" || userID == "" {
		return entities.MembershipRequest{}, domainerrors.ErrInvalidLedgerInput
	}

	club, err := uc.Ledger.GetClub(ctx, clubID)
	if err != nil {
		return entities.MembershipRequest{}, err
	}
	if _, member := club.MemberByID(userID); member {
		return entities.MembershipRequest{}, domainerrors.ErrAlreadyMember
	}

	requestID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.MembershipRequest{}, err
	}
	request := entities.MembershipRequest{
		RequestID:   requestID,
		ClubID:      clubID,
		UserID:      userID,
		Status:      entities.RequestStatusPending,
		RequestedAt: uc.now(),
	}
	if err := uc.Ledger.InsertRequest(ctx, request); err != nil {
		return entities.MembershipRequest{}, err
	}
	logger.Info("membership join requested",
		"event", "ledger_join_requested",
		"module", "student-union/membership-ledger",
		"layer", "application",
		"club_id", clubID,
		"request_id", request.RequestID,
	)
	return request, nil
}

// Approve moves a pending request to approved and appends the requesting user
// to the roster with the member role. The capability check is a precondition
// delegated to the identity side; the ledger enforces only the transition.
func (uc MembershipUseCase) Approve(ctx context.Context, clubID string, requestID string, approverID string) (entities.MembershipRequest, error) {
	return uc.decide(ctx, clubID, requestID, approverID, entities.RequestStatusApproved)
}

// Reject moves a pending request to rejected with no roster mutation.
func (uc MembershipUseCase) Reject(ctx context.Context, clubID string, requestID string, approverID string) (entities.MembershipRequest, error) {
	return uc.decide(ctx, clubID, requestID, approverID, entities.RequestStatusRejected)
}

func (uc MembershipUseCase) decide(
	ctx context.Context,
	clubID string,
	requestID string,
	approverID string,
	status entities.RequestStatus,
) (entities.MembershipRequest, error) {
	logger := application.ResolveLogger(uc.Logger)
	clubID = strings.TrimSpace(clubID)
	requestID = strings.TrimSpace(requestID)
	approverID = strings.TrimSpace(approverID)
	if clubID == "" || requestID == "" || approverID == "" {
		return entities.MembershipRequest{}, domainerrors.ErrInvalidLedgerInput
	}

	allowed, err := uc.Capabilities.CanManageClubs(ctx, approverID)
	if err != nil {
		return entities.MembershipRequest{}, err
	}
	if !allowed {
		logger.Warn("membership decision forbidden",
			"event", "ledger_decision_forbidden",
			"module", "student-union/membership-ledger",
			"layer", "application",
			"club_id", clubID,
			"request_id", requestID,
			"approver_id", approverID,
		)
		return entities.MembershipRequest{}, domainerrors.ErrForbidden
	}

	request, err := uc.Ledger.GetRequest(ctx, requestID)
	if err != nil {
		return entities.MembershipRequest{}, err
	}
	if request.ClubID != clubID {
		return entities.MembershipRequest{}, domainerrors.ErrRequestNotFound
	}
	if request.Status != entities.RequestStatusPending {
		return entities.MembershipRequest{}, domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	if status == entities.RequestStatusApproved {
		// Roster append goes first so a failed club write leaves the request
		// pending and retryable. An existing roster entry counts as success:
		// a prior attempt may have appended the member and then failed the
		// decide write, and the retry must converge.
		if _, err := uc.Ledger.UpdateClub(ctx, clubID, func(club *entities.Club) error {
			if _, member := club.MemberByID(request.UserID); member {
				return nil
			}
			club.Members = append(club.Members, entities.Member{
				UserID:   request.UserID,
				Role:     entities.RoleMember,
				JoinedAt: now,
			})
			return nil
		}); err != nil {
			return entities.MembershipRequest{}, err
		}
	}

	decided, err := uc.Ledger.DecideRequest(ctx, requestID, status, approverID, now)
	if err != nil {
		return entities.MembershipRequest{}, err
	}
	if err := uc.appendDecisionEvent(ctx, decided, now); err != nil {
		return entities.MembershipRequest{}, err
	}
	logger.Info("membership request decided",
		"event", "ledger_request_decided",
		"module", "student-union/membership-ledger",
		"layer", "application",
		"club_id", clubID,
		"request_id", requestID,
		"decision", string(status),
	)
	return decided, nil
}

func (uc MembershipUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc MembershipUseCase) appendDecisionEvent(
	ctx context.Context,
	request entities.MembershipRequest,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	decision := "approved"
	if request.Status == entities.RequestStatusRejected {
		decision = "rejected"
	}
	data := map[string]any{
		"club_id":     request.ClubID,
		"user_id":     request.UserID,
		"decision":    decision,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	envelope, err := newLedgerEnvelope(eventID, "membership.decision", request.ClubID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
