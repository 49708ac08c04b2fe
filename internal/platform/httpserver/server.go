package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	sessionservice "unionhub/contexts/identity-access/session-service"
	"unionhub/contexts/identity-access/session-service/domain/entities"
	electionengine "unionhub/contexts/student-union/election-engine"
	membershipledger "unionhub/contexts/student-union/membership-ledger"
	"unionhub/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "unionhub/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	elections electionengine.Module
	ledger    membershipledger.Module
	sessions  sessionservice.Module
}

func New(
	elections electionengine.Module,
	ledger membershipledger.Module,
	sessions sessionservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		elections: elections,
		ledger:    ledger,
		sessions:  sessions,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, metrics.Middleware(s.mux))
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/auth/v1/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/v1/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/v1/logout", s.handleLogout)
	s.mux.HandleFunc("GET /api/auth/v1/me", s.handleMe)

	s.mux.HandleFunc("POST /api/elections/v1/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /api/elections/v1/elections", s.handleListElections)
	s.mux.HandleFunc("GET /api/elections/v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/open", s.handleOpenElection)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/close", s.handleCloseElection)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/cancel", s.handleCancelElection)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/announce", s.handleAnnounceResults)
	s.mux.HandleFunc("POST /api/elections/v1/elections/{election_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/elections/v1/elections/{election_id}/results", s.handleElectionResults)

	s.mux.HandleFunc("GET /api/clubs/v1/clubs/{club_id}", s.handleGetClub)
	s.mux.HandleFunc("GET /api/clubs/v1/clubs/{club_id}/members", s.handleListMembers)
	s.mux.HandleFunc("POST /api/clubs/v1/clubs/{club_id}/join-requests", s.handleRequestJoin)
	s.mux.HandleFunc("GET /api/clubs/v1/clubs/{club_id}/join-requests", s.handleListPendingRequests)
	s.mux.HandleFunc("POST /api/clubs/v1/clubs/{club_id}/join-requests/{request_id}/approve", s.handleApproveRequest)
	s.mux.HandleFunc("POST /api/clubs/v1/clubs/{club_id}/join-requests/{request_id}/reject", s.handleRejectRequest)
	s.mux.HandleFunc("POST /api/clubs/v1/clubs/{club_id}/leadership", s.handleAssignLeadership)
	s.mux.HandleFunc("POST /api/clubs/v1/clubs/{club_id}/budget/spend", s.handleRecordSpend)
	s.mux.HandleFunc("POST /api/clubs/v1/clubs/{club_id}/budget/allocate", s.handleAllocateBudget)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolvePrincipal identifies the caller: a bearer token validated against
// the session service, or the X-User-Id header when no token is supplied.
// Header-identified callers carry no capability claims.
func (s *Server) resolvePrincipal(r *http.Request) (entities.Principal, error) {
	if token := bearerToken(r); token != "" {
		return s.sessions.Validate.Validate(r.Context(), token)
	}
	if userID := strings.TrimSpace(r.Header.Get("X-User-Id")); userID != "" {
		return entities.Principal{UserID: userID}, nil
	}
	return entities.Principal{}, errMissingIdentity
}

var errMissingIdentity = errors.New("caller identity is required")

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	scheme, token, found := strings.Cut(raw, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
