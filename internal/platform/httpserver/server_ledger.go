package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	ledgererrors "unionhub/contexts/student-union/membership-ledger/domain/errors"
	ledgerhttp "unionhub/contexts/student-union/membership-ledger/transport/http"
)

func (s *Server) handleGetClub(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.GetClubHandler(r.Context(), r.PathValue("club_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListMemberIDsHandler(r.Context(), r.PathValue("club_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRequestJoin(w http.ResponseWriter, r *http.Request) {
	principal, err := s.resolvePrincipal(r)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.ledger.Handler.RequestJoinHandler(r.Context(), r.PathValue("club_id"), ledgerhttp.JoinRequestBody{
		UserID: principal.UserID,
	})
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPendingRequests(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.ledger.Handler.ListPendingRequestsHandler(r.Context(), r.PathValue("club_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	principal, err := s.resolvePrincipal(r)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.ledger.Handler.ApproveRequestHandler(
		r.Context(),
		r.PathValue("club_id"),
		r.PathValue("request_id"),
		principal.UserID,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	principal, err := s.resolvePrincipal(r)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.ledger.Handler.RejectRequestHandler(
		r.Context(),
		r.PathValue("club_id"),
		r.PathValue("request_id"),
		principal.UserID,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignLeadership(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	var req ledgerhttp.AssignLeadershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.AssignLeadershipHandler(r.Context(), r.PathValue("club_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordSpend(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	var req ledgerhttp.SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.RecordSpendHandler(r.Context(), r.PathValue("club_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAllocateBudget(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	var req ledgerhttp.AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.AllocateBudgetHandler(r.Context(), r.PathValue("club_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidLedgerInput):
		writeLedgerError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ledgererrors.ErrClubNotFound):
		writeLedgerError(w, http.StatusNotFound, "club_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrRequestNotFound):
		writeLedgerError(w, http.StatusNotFound, "request_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidTransition):
		writeLedgerError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ledgererrors.ErrAlreadyMember):
		writeLedgerError(w, http.StatusConflict, "already_member", err.Error())
	case errors.Is(err, ledgererrors.ErrNotAMember):
		writeLedgerError(w, http.StatusUnprocessableEntity, "not_a_member", err.Error())
	case errors.Is(err, ledgererrors.ErrForbidden):
		writeLedgerError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ledgererrors.ErrBudgetExceeded):
		writeLedgerError(w, http.StatusUnprocessableEntity, "budget_exceeded", err.Error())
	case errors.Is(err, ledgererrors.ErrUnknownSlot):
		writeLedgerError(w, http.StatusUnprocessableEntity, "unknown_slot", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
