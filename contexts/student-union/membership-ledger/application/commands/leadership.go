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

// LeadershipUseCase manages the club's fixed officer seats.
type LeadershipUseCase struct {
	Ledger ports.LedgerRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Assign seats userID in the named slot. The prior holder is cleared from the
// slot and demoted back to member unless they still hold another seat; the
// new holder's roster role becomes the slot's role. A user may hold seats in
// several clubs at once; only one holder per slot per club is enforced.
func (uc LeadershipUseCase) Assign(ctx context.Context, clubID string, slotName string, userID string) (entities.Club, error) {
	logger := application.ResolveLogger(uc.Logger)
	clubID = strings.TrimSpace(clubID)
	userID = strings.TrimSpace(userID)
	slot, ok := entities.ParseLeadershipSlot(slotName)
	if !ok {
		return entities.Club{}, domainerrors.ErrUnknownSlot
	}
	if clubID == "" || userID == "" {
		return entities.Club{}, domainerrors.ErrInvalidLedgerInput
	}

	club, err := uc.Ledger.UpdateClub(ctx, clubID, func(club *entities.Club) error {
		if _, member := club.MemberByID(userID); !member {
			return domainerrors.ErrNotAMember
		}
		if club.Leadership == nil {
			club.Leadership = make(map[entities.LeadershipSlot]string)
		}

		previous := club.Leadership[slot]
		club.Leadership[slot] = userID
		for i := range club.Members {
			switch club.Members[i].UserID {
			case userID:
				club.Members[i].Role = slot.Role()
			case previous:
				if previous != "" && !club.HoldsAnySlot(previous) {
					club.Members[i].Role = entities.RoleMember
				}
			}
		}
		return nil
	})
	if err != nil {
		return entities.Club{}, err
	}

	now := uc.now()
	if err := uc.appendLeadershipEvent(ctx, clubID, string(slot), userID, now); err != nil {
		return entities.Club{}, err
	}
	logger.Info("leadership slot assigned",
		"event", "ledger_leadership_assigned",
		"module", "student-union/membership-ledger",
		"layer", "application",
		"club_id", clubID,
		"slot", string(slot),
	)
	return club, nil
}

func (uc LeadershipUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc LeadershipUseCase) appendLeadershipEvent(
	ctx context.Context,
	clubID string,
	slot string,
	userID string,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"club_id":     clubID,
		"slot":        slot,
		"user_id":     userID,
		"occurred_at": occurredAt.Format(time.RFC3339),
	}
	envelope, err := newLedgerEnvelope(eventID, "membership.leadership_assigned", clubID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
