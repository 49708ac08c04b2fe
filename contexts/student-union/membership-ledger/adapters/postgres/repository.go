package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"unionhub/contexts/student-union/membership-ledger/domain/entities"
	domainerrors "unionhub/contexts/student-union/membership-ledger/domain/errors"
	"unionhub/contexts/student-union/membership-ledger/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InsertClub(ctx context.Context, club entities.Club) error {
	row := clubModelFromEntity(club)
	members := memberModelsFromEntity(club)
	slots := slotModelsFromEntity(club)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(members) > 0 {
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("ledger_repo_insert_club_failed", err,
			"club_id", strings.TrimSpace(club.ClubID),
		)
	}
	return nil
}

func (r *Repository) GetClub(ctx context.Context, clubID string) (entities.Club, error) {
	return r.getClub(ctx, r.db, clubID, false)
}

func (r *Repository) getClub(ctx context.Context, db *gorm.DB, clubID string, forUpdate bool) (entities.Club, error) {
	query := db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row clubModel
	err := query.
		Where("id = ?", strings.TrimSpace(clubID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Club{}, domainerrors.ErrClubNotFound
		}
		return entities.Club{}, r.logError("ledger_repo_get_club_failed", err,
			"club_id", strings.TrimSpace(clubID),
		)
	}

	var members []memberModel
	if err := db.WithContext(ctx).
		Where("club_id = ?", row.ID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return entities.Club{}, r.logError("ledger_repo_list_members_failed", err,
			"club_id", row.ID,
		)
	}
	var slots []leadershipSlotModel
	if err := db.WithContext(ctx).
		Where("club_id = ?", row.ID).
		Find(&slots).Error; err != nil {
		return entities.Club{}, r.logError("ledger_repo_list_slots_failed", err,
			"club_id", row.ID,
		)
	}
	return row.toEntity(members, slots), nil
}

// UpdateClub runs the mutate function inside a transaction that holds the
// club row lock, so the budget and roster read-modify-write invariants hold
// under concurrent callers. Members and leadership slots are rewritten from
// the mutated snapshot.
func (r *Repository) UpdateClub(
	ctx context.Context,
	clubID string,
	mutate func(*entities.Club) error,
) (entities.Club, error) {
	clubID = strings.TrimSpace(clubID)
	var updated entities.Club
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		club, err := r.getClub(ctx, tx, clubID, true)
		if err != nil {
			return err
		}
		if err := mutate(&club); err != nil {
			return err
		}
		club.UpdatedAt = time.Now().UTC()

		row := clubModelFromEntity(club)
		if err := tx.Model(&clubModel{}).
			Where("id = ?", clubID).
			Updates(map[string]any{
				"name":             row.Name,
				"category":         row.Category,
				"status":           row.Status,
				"budget_allocated": row.BudgetAllocated,
				"budget_spent":     row.BudgetSpent,
				"budget_remaining": row.BudgetRemaining,
				"updated_at":       row.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("club_id = ?", clubID).Delete(&memberModel{}).Error; err != nil {
			return err
		}
		if members := memberModelsFromEntity(club); len(members) > 0 {
			if err := tx.Create(&members).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("club_id = ?", clubID).Delete(&leadershipSlotModel{}).Error; err != nil {
			return err
		}
		if slots := slotModelsFromEntity(club); len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}

		updated = club
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Club{}, err
		}
		return entities.Club{}, r.logError("ledger_repo_update_club_failed", err,
			"club_id", clubID,
		)
	}
	return updated, nil
}

func (r *Repository) ListActiveMemberIDs(ctx context.Context, clubID string) ([]string, error) {
	if _, err := r.GetClub(ctx, clubID); err != nil {
		return nil, err
	}
	var rows []memberModel
	if err := r.db.WithContext(ctx).
		Where("club_id = ?", strings.TrimSpace(clubID)).
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_member_ids_failed", err,
			"club_id", strings.TrimSpace(clubID),
		)
	}
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.UserID)
	}
	return items, nil
}

// InsertRequest leans on the partial unique index over pending rows: a second
// pending request for the same (club_id, user_id) surfaces as a unique
// violation and maps to ErrConflict.
func (r *Repository) InsertRequest(ctx context.Context, request entities.MembershipRequest) error {
	row := requestModelFromEntity(request)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("ledger_repo_insert_request_failed", err,
			"request_id", row.ID,
			"club_id", row.ClubID,
		)
	}
	return nil
}

func (r *Repository) GetRequest(ctx context.Context, requestID string) (entities.MembershipRequest, error) {
	var row requestModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(requestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.MembershipRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.MembershipRequest{}, r.logError("ledger_repo_get_request_failed", err,
			"request_id", strings.TrimSpace(requestID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRequestsByClub(ctx context.Context, clubID string) ([]entities.MembershipRequest, error) {
	var rows []requestModel
	if err := r.db.WithContext(ctx).
		Where("club_id = ?", strings.TrimSpace(clubID)).
		Order("requested_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_requests_failed", err,
			"club_id", strings.TrimSpace(clubID),
		)
	}
	items := make([]entities.MembershipRequest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// DecideRequest is a conditional update on status = pending, so concurrent
// approve/reject attempts resolve to exactly one decision.
func (r *Repository) DecideRequest(
	ctx context.Context,
	requestID string,
	status entities.RequestStatus,
	decidedBy string,
	decidedAt time.Time,
) (entities.MembershipRequest, error) {
	requestID = strings.TrimSpace(requestID)
	update := r.db.WithContext(ctx).
		Model(&requestModel{}).
		Where("id = ?", requestID).
		Where("status = ?", string(entities.RequestStatusPending)).
		Updates(map[string]any{
			"status":     string(status),
			"decided_by": strings.TrimSpace(decidedBy),
			"decided_at": decidedAt.UTC(),
		})
	if update.Error != nil {
		return entities.MembershipRequest{}, r.logError("ledger_repo_decide_request_failed", update.Error,
			"request_id", requestID,
			"status", string(status),
		)
	}
	if update.RowsAffected == 0 {
		if _, err := r.GetRequest(ctx, requestID); err != nil {
			return entities.MembershipRequest{}, err
		}
		return entities.MembershipRequest{}, domainerrors.ErrInvalidTransition
	}
	return r.GetRequest(ctx, requestID)
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:           envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("ledger_repo_append_outbox_failed", err,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		}).Error
	if err != nil {
		return r.logError("ledger_repo_mark_outbox_failed", err,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "student-union/membership-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("membership ledger repository operation failed", fields...)
	return err
}

func isDomainError(err error) bool {
	return errors.Is(err, domainerrors.ErrClubNotFound) ||
		errors.Is(err, domainerrors.ErrRequestNotFound) ||
		errors.Is(err, domainerrors.ErrInvalidTransition) ||
		errors.Is(err, domainerrors.ErrAlreadyMember) ||
		errors.Is(err, domainerrors.ErrNotAMember) ||
		errors.Is(err, domainerrors.ErrBudgetExceeded) ||
		errors.Is(err, domainerrors.ErrUnknownSlot) ||
		errors.Is(err, domainerrors.ErrInvalidLedgerInput) ||
		errors.Is(err, domainerrors.ErrConflict)
}

type clubModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Name            string    `gorm:"column:name"`
	Category        string    `gorm:"column:category"`
	Status          string    `gorm:"column:status"`
	BudgetAllocated int64     `gorm:"column:budget_allocated"`
	BudgetSpent     int64     `gorm:"column:budget_spent"`
	BudgetRemaining int64     `gorm:"column:budget_remaining"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (clubModel) TableName() string {
	return "clubs"
}

func clubModelFromEntity(club entities.Club) clubModel {
	row := clubModel{
		ID:              strings.TrimSpace(club.ClubID),
		Name:            strings.TrimSpace(club.Name),
		Category:        strings.TrimSpace(club.Category),
		Status:          string(club.Status),
		BudgetAllocated: club.Budget.Allocated,
		BudgetSpent:     club.Budget.Spent,
		BudgetRemaining: club.Budget.Remaining,
		CreatedAt:       club.CreatedAt.UTC(),
		UpdatedAt:       club.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m clubModel) toEntity(members []memberModel, slots []leadershipSlotModel) entities.Club {
	entity := entities.Club{
		ClubID:   m.ID,
		Name:     m.Name,
		Category: m.Category,
		Status:   entities.ClubStatus(m.Status),
		Budget: entities.Budget{
			Allocated: m.BudgetAllocated,
			Spent:     m.BudgetSpent,
			Remaining: m.BudgetRemaining,
		},
		Leadership: make(map[entities.LeadershipSlot]string, len(slots)),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
	for _, member := range members {
		entity.Members = append(entity.Members, entities.Member{
			UserID:   member.UserID,
			Role:     entities.MemberRole(member.Role),
			JoinedAt: member.JoinedAt.UTC(),
		})
	}
	for _, slot := range slots {
		entity.Leadership[entities.LeadershipSlot(slot.Slot)] = slot.UserID
	}
	return entity
}

type memberModel struct {
	ClubID   string    `gorm:"column:club_id;primaryKey"`
	UserID   string    `gorm:"column:user_id;primaryKey"`
	Role     string    `gorm:"column:role"`
	JoinedAt time.Time `gorm:"column:joined_at"`
}

func (memberModel) TableName() string {
	return "club_members"
}

func memberModelsFromEntity(club entities.Club) []memberModel {
	rows := make([]memberModel, 0, len(club.Members))
	for _, member := range club.Members {
		rows = append(rows, memberModel{
			ClubID:   strings.TrimSpace(club.ClubID),
			UserID:   member.UserID,
			Role:     string(member.Role),
			JoinedAt: member.JoinedAt.UTC(),
		})
	}
	return rows
}

type leadershipSlotModel struct {
	ClubID string `gorm:"column:club_id;primaryKey"`
	Slot   string `gorm:"column:slot;primaryKey"`
	UserID string `gorm:"column:user_id"`
}

func (leadershipSlotModel) TableName() string {
	return "club_leadership_slots"
}

func slotModelsFromEntity(club entities.Club) []leadershipSlotModel {
	rows := make([]leadershipSlotModel, 0, len(club.Leadership))
	for slot, holder := range club.Leadership {
		rows = append(rows, leadershipSlotModel{
			ClubID: strings.TrimSpace(club.ClubID),
			Slot:   string(slot),
			UserID: holder,
		})
	}
	return rows
}

// The pending-uniqueness rule relies on a partial index created in the
// migration: CREATE UNIQUE INDEX uq_requests_pending ON membership_requests
// (club_id, user_id) WHERE status = 'pending'.
type requestModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	ClubID      string     `gorm:"column:club_id"`
	UserID      string     `gorm:"column:user_id"`
	Status      string     `gorm:"column:status"`
	RequestedAt time.Time  `gorm:"column:requested_at"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	DecidedBy   string     `gorm:"column:decided_by"`
}

func (requestModel) TableName() string {
	return "membership_requests"
}

func requestModelFromEntity(request entities.MembershipRequest) requestModel {
	row := requestModel{
		ID:          strings.TrimSpace(request.RequestID),
		ClubID:      strings.TrimSpace(request.ClubID),
		UserID:      strings.TrimSpace(request.UserID),
		Status:      string(request.Status),
		RequestedAt: request.RequestedAt.UTC(),
		DecidedBy:   strings.TrimSpace(request.DecidedBy),
	}
	if request.DecidedAt != nil {
		at := request.DecidedAt.UTC()
		row.DecidedAt = &at
	}
	return row
}

func (m requestModel) toEntity() entities.MembershipRequest {
	entity := entities.MembershipRequest{
		RequestID:   m.ID,
		ClubID:      m.ClubID,
		UserID:      m.UserID,
		Status:      entities.RequestStatus(m.Status),
		RequestedAt: m.RequestedAt.UTC(),
		DecidedBy:   m.DecidedBy,
	}
	if m.DecidedAt != nil {
		at := m.DecidedAt.UTC()
		entity.DecidedAt = &at
	}
	return entity
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ledger_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.LedgerRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
