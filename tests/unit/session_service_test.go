package unit

import (
	"context"
	"errors"
	"testing"

	sessionservice "unionhub/contexts/identity-access/session-service"
	domainerrors "unionhub/contexts/identity-access/session-service/domain/errors"
	httptransport "unionhub/contexts/identity-access/session-service/transport/http"
)

const testSecret = "unit-test-secret"

func registerAndLogin(t *testing.T, module sessionservice.Module, role string) httptransport.LoginResponse {
	t.Helper()
	_, err := module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Name:     "Abebe Kebede",
		Email:    "abebe@example.edu",
		Password: "s3cret!",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login, err := module.Handler.LoginHandler(context.Background(), httptransport.LoginRequest{
		Email:    "abebe@example.edu",
		Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return login
}

func TestSessionRegisterLoginValidate(t *testing.T) {
	module := sessionservice.NewInMemoryModule(testSecret, nil, nil)
	login := registerAndLogin(t, module, "clubs_associations")

	if login.Token == "" {
		t.Fatalf("expected a session token")
	}
	principal, err := module.Handler.ValidateHandler(context.Background(), login.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if principal.UserID != login.User.UserID {
		t.Fatalf("principal user %s does not match login user %s", principal.UserID, login.User.UserID)
	}
	if principal.Role != "clubs_associations" {
		t.Fatalf("expected clubs_associations role, got %s", principal.Role)
	}
	if !principal.CanManageClubs {
		t.Fatalf("clubs_associations principal must carry the clubs-management capability")
	}
}

func TestSessionLogoutRevokesToken(t *testing.T) {
	module := sessionservice.NewInMemoryModule(testSecret, nil, nil)
	login := registerAndLogin(t, module, "")

	if err := module.Handler.LogoutHandler(context.Background(), login.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	// Logout is idempotent.
	if err := module.Handler.LogoutHandler(context.Background(), login.Token); err != nil {
		t.Fatalf("logout replay failed: %v", err)
	}
	if _, err := module.Handler.ValidateHandler(context.Background(), login.Token); !errors.Is(err, domainerrors.ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after logout, got %v", err)
	}
}

func TestSessionLoginRejectsBadCredentials(t *testing.T) {
	module := sessionservice.NewInMemoryModule(testSecret, nil, nil)
	registerAndLogin(t, module, "")

	_, err := module.Handler.LoginHandler(context.Background(), httptransport.LoginRequest{
		Email:    "abebe@example.edu",
		Password: "wrong-password",
	})
	if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	_, err = module.Handler.LoginHandler(context.Background(), httptransport.LoginRequest{
		Email:    "nobody@example.edu",
		Password: "whatever",
	})
	if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestSessionRegisterValidation(t *testing.T) {
	module := sessionservice.NewInMemoryModule(testSecret, nil, nil)

	_, err := module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Name:     "Short Password",
		Email:    "short@example.edu",
		Password: "abc",
	})
	if !errors.Is(err, domainerrors.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	_, err = module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Name:     "Odd Role",
		Email:    "odd@example.edu",
		Password: "s3cret!",
		Role:     "archchancellor",
	})
	if !errors.Is(err, domainerrors.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}

	registerAndLogin(t, module, "")
	_, err = module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Name:     "Duplicate Email",
		Email:    "abebe@example.edu",
		Password: "another-pass",
	})
	if !errors.Is(err, domainerrors.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSessionValidateRejectsForgedToken(t *testing.T) {
	module := sessionservice.NewInMemoryModule(testSecret, nil, nil)
	login := registerAndLogin(t, module, "")

	other := sessionservice.NewInMemoryModule("a-different-secret", nil, nil)
	if _, err := other.Handler.ValidateHandler(context.Background(), login.Token); !errors.Is(err, domainerrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid across secrets, got %v", err)
	}
}
