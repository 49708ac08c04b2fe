package ports

import (
	"context"
	"time"

	"unionhub/contexts/identity-access/session-service/domain/entities"
)

// UserRepository persists accounts. InsertUser must reject a duplicate email
// with ErrEmailTaken.
type UserRepository interface {
	InsertUser(ctx context.Context, user entities.User) error
	GetUser(ctx context.Context, userID string) (entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	RecordLogin(ctx context.Context, userID string, at time.Time) error
}

// SessionRepository is the server-side revocation store keyed by session ID.
type SessionRepository interface {
	InsertSession(ctx context.Context, session entities.Session) error
	GetSession(ctx context.Context, sessionID string) (entities.Session, error)
	RevokeSession(ctx context.Context, sessionID string, at time.Time) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// TokenClaims is the subset of the signed token the core cares about; the
// session record remains the source of truth for revocation and expiry.
type TokenClaims struct {
	SessionID string
	UserID    string
}

type TokenCodec interface {
	Issue(user entities.User, session entities.Session) (string, error)
	Parse(token string) (TokenClaims, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
