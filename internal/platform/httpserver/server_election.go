package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	electionerrors "unionhub/contexts/student-union/election-engine/domain/errors"
	electionhttp "unionhub/contexts/student-union/election-engine/transport/http"
)

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	var req electionhttp.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.CreateElectionHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListElections(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ListElectionsHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.GetElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenElection(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.elections.Handler.OpenElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseElection(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.elections.Handler.CloseElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelElection(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.elections.Handler.CancelElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnnounceResults(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolvePrincipal(r); err != nil {
		writeIdentityError(w, err)
		return
	}
	resp, err := s.elections.Handler.AnnounceResultsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	principal, err := s.resolvePrincipal(r)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	var req electionhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.CastVoteHandler(r.Context(), r.PathValue("election_id"), principal.UserID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleElectionResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ElectionResultsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeElectionDomainError keeps duplicate_vote distinct from other conflicts
// so clients can render "you already voted" instead of a retry prompt.
func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrInvalidElectionInput):
		writeElectionError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotFound):
		writeElectionError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidTransition):
		writeElectionError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, electionerrors.ErrNotEligible):
		writeElectionError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, electionerrors.ErrDuplicateVote):
		writeElectionError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, electionerrors.ErrUnknownCandidate):
		writeElectionError(w, http.StatusUnprocessableEntity, "unknown_candidate", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyAnnounced):
		writeElectionError(w, http.StatusConflict, "already_announced", err.Error())
	case errors.Is(err, electionerrors.ErrClubNotVotable):
		writeElectionError(w, http.StatusUnprocessableEntity, "club_not_votable", err.Error())
	case errors.Is(err, electionerrors.ErrConflict):
		writeElectionError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeIdentityError(w http.ResponseWriter, err error) {
	if errors.Is(err, errMissingIdentity) {
		writeJSON(w, http.StatusUnauthorized, electionhttp.ErrorResponse{
			Code:    "missing_identity",
			Message: "Authorization bearer token or X-User-Id header is required",
		})
		return
	}
	writeJSON(w, http.StatusUnauthorized, electionhttp.ErrorResponse{
		Code:    "invalid_token",
		Message: err.Error(),
	})
}
