package token

import (
	"fmt"
	"strings"

	"unionhub/contexts/identity-access/session-service/domain/entities"
	domainerrors "unionhub/contexts/identity-access/session-service/domain/errors"
	"unionhub/contexts/identity-access/session-service/ports"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec signs session tokens with HS256. The session ID travels as the
// JWT ID claim so revocation lookups need only the parsed claims.
type JWTCodec struct {
	secret []byte
}

func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret)}
}

func (c *JWTCodec) Issue(user entities.User, session entities.Session) (string, error) {
	claims := sessionClaims{
		UserID: user.UserID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.SessionID,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (c *JWTCodec) Parse(raw string) (ports.TokenClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ports.TokenClaims{}, domainerrors.ErrTokenInvalid
	}
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return ports.TokenClaims{}, domainerrors.ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return ports.TokenClaims{}, domainerrors.ErrTokenInvalid
	}
	return ports.TokenClaims{
		SessionID: claims.ID,
		UserID:    claims.UserID,
	}, nil
}

var _ ports.TokenCodec = (*JWTCodec)(nil)
