package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	sessionerrors "unionhub/contexts/identity-access/session-service/domain/errors"
	sessionhttp "unionhub/contexts/identity-access/session-service/transport/http"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req sessionhttp.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSessionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.sessions.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeSessionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req sessionhttp.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSessionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.sessions.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeSessionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeSessionError(w, http.StatusUnauthorized, "missing_token", "Authorization bearer token is required")
		return
	}
	if err := s.sessions.Handler.LogoutHandler(r.Context(), token); err != nil {
		writeSessionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeSessionError(w, http.StatusUnauthorized, "missing_token", "Authorization bearer token is required")
		return
	}
	resp, err := s.sessions.Handler.ValidateHandler(r.Context(), token)
	if err != nil {
		writeSessionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSessionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionerrors.ErrInvalidSessionInput):
		writeSessionError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, sessionerrors.ErrWeakPassword):
		writeSessionError(w, http.StatusBadRequest, "weak_password", err.Error())
	case errors.Is(err, sessionerrors.ErrUnknownRole):
		writeSessionError(w, http.StatusUnprocessableEntity, "unknown_role", err.Error())
	case errors.Is(err, sessionerrors.ErrEmailTaken):
		writeSessionError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, sessionerrors.ErrInvalidCredentials):
		writeSessionError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, sessionerrors.ErrUserInactive):
		writeSessionError(w, http.StatusForbidden, "user_inactive", err.Error())
	case errors.Is(err, sessionerrors.ErrUserNotFound):
		writeSessionError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, sessionerrors.ErrSessionNotFound),
		errors.Is(err, sessionerrors.ErrSessionRevoked),
		errors.Is(err, sessionerrors.ErrSessionExpired),
		errors.Is(err, sessionerrors.ErrTokenInvalid):
		writeSessionError(w, http.StatusUnauthorized, "invalid_token", err.Error())
	default:
		writeSessionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSessionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, sessionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
