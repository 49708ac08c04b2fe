package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "unionhub/contexts/identity-access/session-service/application"
	"unionhub/contexts/identity-access/session-service/domain/entities"
	domainerrors "unionhub/contexts/identity-access/session-service/domain/errors"
	"unionhub/contexts/identity-access/session-service/ports"
)

const minPasswordLength = 6

// DefaultSessionTTL applies when the use case is wired without an explicit
// token lifetime.
const DefaultSessionTTL = 24 * time.Hour

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	User    entities.User
	Session entities.Session
	Token   string
}

// AuthUseCase covers account registration, login with token issuance, and
// session revocation.
type AuthUseCase struct {
	Users      ports.UserRepository
	Sessions   ports.SessionRepository
	Hasher     ports.PasswordHasher
	Tokens     ports.TokenCodec
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// Register creates an account with a bcrypt-hashed password. The admin flag
// is never settable through registration.
func (uc AuthUseCase) Register(ctx context.Context, cmd RegisterCommand) (entities.User, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return entities.User{}, domainerrors.ErrInvalidSessionInput
	}
	if len(cmd.Password) < minPasswordLength {
		return entities.User{}, domainerrors.ErrWeakPassword
	}
	role, ok := entities.ParseUserRole(cmd.Role)
	if !ok {
		return entities.User{}, domainerrors.ErrUnknownRole
	}

	hash, err := uc.Hasher.Hash(cmd.Password)
	if err != nil {
		return entities.User{}, err
	}
	userID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	user := entities.User{
		UserID:       userID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    uc.now(),
	}
	if err := uc.Users.InsertUser(ctx, user); err != nil {
		return entities.User{}, err
	}
	logger.Info("user registered",
		"event", "session_user_registered",
		"module", "identity-access/session-service",
		"layer", "application",
		"user_id", user.UserID,
		"role", string(user.Role),
	)
	return user, nil
}

// Login verifies credentials, records last-login, and issues a signed token
// backed by a server-side session record. A missing account and a wrong
// password are indistinguishable to the caller.
func (uc AuthUseCase) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, domainerrors.ErrInvalidSessionInput
	}

	user, err := uc.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return LoginResult{}, domainerrors.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !user.Active {
		return LoginResult{}, domainerrors.ErrUserInactive
	}
	if err := uc.Hasher.Compare(user.PasswordHash, password); err != nil {
		logger.Warn("login rejected",
			"event", "session_login_rejected",
			"module", "identity-access/session-service",
			"layer", "application",
			"user_id", user.UserID,
		)
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}

	now := uc.now()
	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return LoginResult{}, err
	}
	session := entities.Session{
		SessionID: sessionID,
		UserID:    user.UserID,
		IssuedAt:  now,
		ExpiresAt: now.Add(uc.sessionTTL()),
	}
	if err := uc.Sessions.InsertSession(ctx, session); err != nil {
		return LoginResult{}, err
	}
	token, err := uc.Tokens.Issue(user, session)
	if err != nil {
		return LoginResult{}, err
	}
	if err := uc.Users.RecordLogin(ctx, user.UserID, now); err != nil {
		return LoginResult{}, err
	}
	at := now
	user.LastLoginAt = &at

	logger.Info("user logged in",
		"event", "session_login",
		"module", "identity-access/session-service",
		"layer", "application",
		"user_id", user.UserID,
		"session_id", session.SessionID,
	)
	return LoginResult{User: user, Session: session, Token: token}, nil
}

// Revoke invalidates the token's session. Revoking an already revoked
// session is a no-op success, so logout is idempotent.
func (uc AuthUseCase) Revoke(ctx context.Context, token string) error {
	logger := application.ResolveLogger(uc.Logger)
	claims, err := uc.Tokens.Parse(token)
	if err != nil {
		return domainerrors.ErrTokenInvalid
	}
	session, err := uc.Sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return err
	}
	if session.Revoked() {
		return nil
	}
	if err := uc.Sessions.RevokeSession(ctx, session.SessionID, uc.now()); err != nil {
		return err
	}
	logger.Info("session revoked",
		"event", "session_revoked",
		"module", "identity-access/session-service",
		"layer", "application",
		"session_id", session.SessionID,
	)
	return nil
}

func (uc AuthUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc AuthUseCase) sessionTTL() time.Duration {
	if uc.SessionTTL > 0 {
		return uc.SessionTTL
	}
	return DefaultSessionTTL
}
