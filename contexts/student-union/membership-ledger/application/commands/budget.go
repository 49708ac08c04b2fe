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

// BudgetUseCase keeps the club budget honest: remaining is recomputed inside
// the repository's atomic read-modify-write on every change, and spend can
// never push spent past allocated.
type BudgetUseCase struct {
	Ledger ports.LedgerRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// RecordSpend adds amount to spent. Rejected with no state change when the
// amount is negative or the spend would exceed the allocation.
func (uc BudgetUseCase) RecordSpend(ctx context.Context, clubID string, amount int64) (entities.Budget, error) {
	logger := application.ResolveLogger(uc.Logger)
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return entities.Budget{}, domainerrors.ErrInvalidLedgerInput
	}
	if amount < 0 {
		return entities.Budget{}, domainerrors.ErrInvalidLedgerInput
	}

	club, err := uc.Ledger.UpdateClub(ctx, clubID, func(club *entities.Club) error {
		if club.Budget.Spent+amount > club.Budget.Allocated {
			return domainerrors.ErrBudgetExceeded
		}
		club.Budget.Spent += amount
		club.Budget.Recompute()
		return nil
	})
	if err != nil {
		return entities.Budget{}, err
	}

	if err := uc.appendBudgetEvent(ctx, "membership.budget_spent", club, amount); err != nil {
		return entities.Budget{}, err
	}
	logger.Info("club spend recorded",
		"event", "ledger_spend_recorded",
		"module", "student-union/membership-ledger",
		"layer", "application",
		"club_id", clubID,
		"amount", amount,
		"remaining", club.Budget.Remaining,
	)
	return club.Budget, nil
}

// Allocate sets the club's allocation. An allocation below what is already
// spent is rejected with no state change.
func (uc BudgetUseCase) Allocate(ctx context.Context, clubID string, amount int64) (entities.Budget, error) {
	logger := application.ResolveLogger(uc.Logger)
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return entities.Budget{}, domainerrors.ErrInvalidLedgerInput
	}
	if amount < 0 {
		return entities.Budget{}, domainerrors.ErrInvalidLedgerInput
	}

	club, err := uc.Ledger.UpdateClub(ctx, clubID, func(club *entities.Club) error {
		if amount < club.Budget.Spent {
			return domainerrors.ErrInvalidLedgerInput
		}
		club.Budget.Allocated = amount
		club.Budget.Recompute()
		return nil
	})
	if err != nil {
		return entities.Budget{}, err
	}

	if err := uc.appendBudgetEvent(ctx, "membership.budget_allocated", club, amount); err != nil {
		return entities.Budget{}, err
	}
	logger.Info("club budget allocated",
		"event", "ledger_budget_allocated",
		"module", "student-union/membership-ledger",
		"layer", "application",
		"club_id", clubID,
		"allocated", amount,
	)
	return club.Budget, nil
}

func (uc BudgetUseCase) appendBudgetEvent(
	ctx context.Context,
	eventType string,
	club entities.Club,
	amount int64,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	data := map[string]any{
		"club_id":     club.ClubID,
		"amount":      amount,
		"allocated":   club.Budget.Allocated,
		"spent":       club.Budget.Spent,
		"remaining":   club.Budget.Remaining,
		"occurred_at": now.Format(time.RFC3339),
	}
	envelope, err := newLedgerEnvelope(eventID, eventType, club.ClubID, now, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
