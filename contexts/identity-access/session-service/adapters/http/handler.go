package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"unionhub/contexts/identity-access/session-service/application/commands"
	"unionhub/contexts/identity-access/session-service/application/queries"
	"unionhub/contexts/identity-access/session-service/domain/entities"
	httptransport "unionhub/contexts/identity-access/session-service/transport/http"
)

type Handler struct {
	Auth     commands.AuthUseCase
	Validate queries.ValidateUseCase
	Logger   *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterRequest) (httptransport.UserResponse, error) {
	user, err := h.Auth.Register(ctx, commands.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.LoginResponse, error) {
	result, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt.Format(time.RFC3339),
		User:      mapUser(result.User),
	}, nil
}

func (h Handler) LogoutHandler(ctx context.Context, token string) error {
	return h.Auth.Revoke(ctx, token)
}

func (h Handler) ValidateHandler(ctx context.Context, token string) (httptransport.PrincipalResponse, error) {
	principal, err := h.Validate.Validate(ctx, token)
	if err != nil {
		return httptransport.PrincipalResponse{}, err
	}
	return httptransport.PrincipalResponse{
		UserID:         principal.UserID,
		Name:           principal.Name,
		Role:           string(principal.Role),
		Admin:          principal.Admin,
		CanManageClubs: principal.CanManageClubs,
	}, nil
}

func mapUser(user entities.User) httptransport.UserResponse {
	response := httptransport.UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Admin:     user.Admin,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		response.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	return response
}
