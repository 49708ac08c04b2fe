package queries

import (
	"context"
	"errors"
	"time"

	"unionhub/contexts/identity-access/session-service/domain/entities"
	domainerrors "unionhub/contexts/identity-access/session-service/domain/errors"
	"unionhub/contexts/identity-access/session-service/ports"
)

// ValidateUseCase resolves bearer tokens to principals. The signed claims
// locate the session; revocation and expiry are decided from the session
// record, not from the token alone.
type ValidateUseCase struct {
	Users    ports.UserRepository
	Sessions ports.SessionRepository
	Tokens   ports.TokenCodec
	Clock    ports.Clock
}

func (uc ValidateUseCase) Validate(ctx context.Context, token string) (entities.Principal, error) {
	claims, err := uc.Tokens.Parse(token)
	if err != nil {
		return entities.Principal{}, domainerrors.ErrTokenInvalid
	}
	session, err := uc.Sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return entities.Principal{}, err
	}
	if session.Revoked() {
		return entities.Principal{}, domainerrors.ErrSessionRevoked
	}
	if session.ExpiredAt(uc.now()) {
		return entities.Principal{}, domainerrors.ErrSessionExpired
	}
	user, err := uc.Users.GetUser(ctx, session.UserID)
	if err != nil {
		return entities.Principal{}, err
	}
	if !user.Active {
		return entities.Principal{}, domainerrors.ErrUserInactive
	}
	return entities.Principal{
		UserID:         user.UserID,
		Name:           user.Name,
		Role:           user.Role,
		Admin:          user.Admin,
		CanManageClubs: user.CanManageClubs(),
	}, nil
}

// CanManageClubs answers the capability question for a bare user ID. This is
// the adapter surface the membership ledger's CapabilityChecker port binds
// to when the caller is identified without a token.
func (uc ValidateUseCase) CanManageClubs(ctx context.Context, userID string) (bool, error) {
	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.Active {
		return false, nil
	}
	return user.CanManageClubs(), nil
}

// IsActiveAccount reports whether the user exists and is active. The union
// election roll treats every active account as eligible.
func (uc ValidateUseCase) IsActiveAccount(ctx context.Context, userID string) (bool, error) {
	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Active, nil
}

func (uc ValidateUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
