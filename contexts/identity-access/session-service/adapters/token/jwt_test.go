package token

import (
	"errors"
	"testing"
	"time"

	"unionhub/contexts/identity-access/session-service/domain/entities"
	domainerrors "unionhub/contexts/identity-access/session-service/domain/errors"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	now := time.Now().UTC()

	signed, err := codec.Issue(entities.User{
		UserID: "user-1",
		Role:   entities.RoleClubsAssociations,
	}, entities.Session{
		SessionID: "session-1",
		UserID:    "user-1",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := codec.Parse(signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.SessionID != "session-1" || claims.UserID != "user-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsTamperedAndForeignTokens(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	now := time.Now().UTC()
	signed, err := codec.Issue(entities.User{UserID: "user-1"}, entities.Session{
		SessionID: "session-1",
		UserID:    "user-1",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := codec.Parse(signed + "x"); !errors.Is(err, domainerrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
	if _, err := NewJWTCodec("other-secret").Parse(signed); !errors.Is(err, domainerrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid across secrets, got %v", err)
	}
	if _, err := codec.Parse(""); !errors.Is(err, domainerrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for empty token, got %v", err)
	}
	if _, err := codec.Parse("not-a-jwt"); !errors.Is(err, domainerrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for junk, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	codec := NewJWTCodec("test-secret")
	past := time.Now().UTC().Add(-2 * time.Hour)
	signed, err := codec.Issue(entities.User{UserID: "user-1"}, entities.Session{
		SessionID: "session-1",
		UserID:    "user-1",
		IssuedAt:  past,
		ExpiresAt: past.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := codec.Parse(signed); !errors.Is(err, domainerrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}
