package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"unionhub/contexts/identity-access/session-service/domain/entities"
	domainerrors "unionhub/contexts/identity-access/session-service/domain/errors"
	"unionhub/contexts/identity-access/session-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

func (r *Repository) InsertUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrEmailTaken
		}
		return r.logError("session_repo_insert_user_failed", err,
			"user_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("session_repo_get_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("session_repo_get_user_by_email_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	update := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", strings.TrimSpace(userID)).
		Update("last_login_at", at.UTC())
	if update.Error != nil {
		return r.logError("session_repo_record_login_failed", update.Error,
			"user_id", strings.TrimSpace(userID),
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) InsertSession(ctx context.Context, session entities.Session) error {
	row := sessionModelFromEntity(session)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("session_repo_insert_session_failed", err,
			"session_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.Session, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Session{}, domainerrors.ErrSessionNotFound
		}
		return entities.Session{}, r.logError("session_repo_get_session_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) RevokeSession(ctx context.Context, sessionID string, at time.Time) error {
	update := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("id = ?", strings.TrimSpace(sessionID)).
		Update("revoked_at", at.UTC())
	if update.Error != nil {
		return r.logError("session_repo_revoke_session_failed", update.Error,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrSessionNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/session-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("session repository operation failed", fields...)
	return err
}

type userModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Name         string     `gorm:"column:name"`
	Email        string     `gorm:"column:email;uniqueIndex:uq_users_email"`
	PasswordHash string     `gorm:"column:password_hash"`
	Role         string     `gorm:"column:role"`
	Admin        bool       `gorm:"column:is_admin"`
	Active       bool       `gorm:"column:is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	row := userModel{
		ID:           strings.TrimSpace(user.UserID),
		Name:         strings.TrimSpace(user.Name),
		Email:        strings.ToLower(strings.TrimSpace(user.Email)),
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Admin:        user.Admin,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt.UTC(),
	}
	if user.LastLoginAt != nil {
		at := user.LastLoginAt.UTC()
		row.LastLoginAt = &at
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m userModel) toEntity() entities.User {
	entity := entities.User{
		UserID:       m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         entities.UserRole(m.Role),
		Admin:        m.Admin,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt.UTC(),
	}
	if m.LastLoginAt != nil {
		at := m.LastLoginAt.UTC()
		entity.LastLoginAt = &at
	}
	return entity
}

type sessionModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	UserID    string     `gorm:"column:user_id;index"`
	IssuedAt  time.Time  `gorm:"column:issued_at"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`
}

func (sessionModel) TableName() string {
	return "sessions"
}

func sessionModelFromEntity(session entities.Session) sessionModel {
	row := sessionModel{
		ID:        strings.TrimSpace(session.SessionID),
		UserID:    strings.TrimSpace(session.UserID),
		IssuedAt:  session.IssuedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	}
	if session.RevokedAt != nil {
		at := session.RevokedAt.UTC()
		row.RevokedAt = &at
	}
	return row
}

func (m sessionModel) toEntity() entities.Session {
	entity := entities.Session{
		SessionID: m.ID,
		UserID:    m.UserID,
		IssuedAt:  m.IssuedAt.UTC(),
		ExpiresAt: m.ExpiresAt.UTC(),
	}
	if m.RevokedAt != nil {
		at := m.RevokedAt.UTC()
		entity.RevokedAt = &at
	}
	return entity
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.UserRepository = (*Repository)(nil)
var _ ports.SessionRepository = (*Repository)(nil)
