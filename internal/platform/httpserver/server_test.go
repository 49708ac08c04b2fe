package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sessionservice "unionhub/contexts/identity-access/session-service"
	electionengine "unionhub/contexts/student-union/election-engine"
	electionhttp "unionhub/contexts/student-union/election-engine/transport/http"
	membershipledger "unionhub/contexts/student-union/membership-ledger"
	ledgerentities "unionhub/contexts/student-union/membership-ledger/domain/entities"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	elections := electionengine.NewInMemoryModule(nil, nil)
	ledger := membershipledger.NewInMemoryModule([]ledgerentities.Club{{
		ClubID:     "club-1",
		Name:       "Chess Club",
		Status:     ledgerentities.ClubStatusActive,
		Leadership: map[ledgerentities.LeadershipSlot]string{},
	}}, nil)
	sessions := sessionservice.NewInMemoryModule("test-secret", nil, nil)
	return New(elections, ledger, sessions, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method string, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return payload.Code
}

func seedOngoingElection(t *testing.T, server *Server, voters ...string) string {
	t.Helper()
	for _, voter := range voters {
		server.elections.Store.AddToGlobalRoll(voter)
	}
	created, err := server.elections.Handler.CreateElectionHandler(context.Background(), electionhttp.CreateElectionRequest{
		Title: "union president",
		Scope: "global",
		Candidates: []electionhttp.CandidateInput{
			{CandidateID: "cand-a", Name: "Alice"},
			{CandidateID: "cand-b", Name: "Bikila"},
		},
		OpensAt:  time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
		ClosesAt: time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("seed election failed: %v", err)
	}
	if _, err := server.elections.Handler.OpenElectionHandler(context.Background(), created.ElectionID); err != nil {
		t.Fatalf("open seeded election failed: %v", err)
	}
	return created.ElectionID
}

func TestVoteRequiresCallerIdentity(t *testing.T) {
	server := newTestServer(t)
	electionID := seedOngoingElection(t, server, "voter-1")

	rr := doJSON(t, server, http.MethodPost, "/api/elections/v1/elections/"+electionID+"/votes",
		map[string]string{"candidate_id": "cand-a"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "missing_identity" {
		t.Fatalf("expected missing_identity, got %s", code)
	}
}

func TestVoteDuplicateReturnsDistinctConflictCode(t *testing.T) {
	server := newTestServer(t)
	electionID := seedOngoingElection(t, server, "voter-1")
	headers := map[string]string{"X-User-Id": "voter-1"}

	rr := doJSON(t, server, http.MethodPost, "/api/elections/v1/elections/"+electionID+"/votes",
		map[string]string{"candidate_id": "cand-a"}, headers)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for first vote, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/elections/v1/elections/"+electionID+"/votes",
		map[string]string{"candidate_id": "cand-b"}, headers)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate vote, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "duplicate_vote" {
		t.Fatalf("expected duplicate_vote, got %s", code)
	}
}

func TestApproveRequiresClubsManagementCapability(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/clubs/v1/clubs/club-1/join-requests",
		nil, map[string]string{"X-User-Id": "user-1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for join request, got %d: %s", rr.Code, rr.Body.String())
	}
	var request struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &request); err != nil {
		t.Fatalf("decode join response: %v", err)
	}

	approvePath := "/api/clubs/v1/clubs/club-1/join-requests/" + request.RequestID + "/approve"
	rr = doJSON(t, server, http.MethodPost, approvePath, nil, map[string]string{"X-User-Id": "user-2"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without capability, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "forbidden" {
		t.Fatalf("expected forbidden, got %s", code)
	}

	server.ledger.Store.GrantManager("admin-1")
	rr = doJSON(t, server, http.MethodPost, approvePath, nil, map[string]string{"X-User-Id": "admin-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with capability, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAuthFlowIssuesUsableBearerToken(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/auth/v1/register", map[string]string{
		"name":     "Sara Tesfaye",
		"email":    "sara@example.edu",
		"password": "s3cret!",
		"role":     "clubs_associations",
	}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 for register, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/auth/v1/login", map[string]string{
		"email":    "sara@example.edu",
		"password": "s3cret!",
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for login, got %d: %s", rr.Code, rr.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/auth/v1/me", nil, map[string]string{
		"Authorization": "Bearer " + login.Token,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for me, got %d: %s", rr.Code, rr.Body.String())
	}
	var principal struct {
		Role           string `json:"role"`
		CanManageClubs bool   `json:"can_manage_clubs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &principal); err != nil {
		t.Fatalf("decode principal: %v", err)
	}
	if principal.Role != "clubs_associations" || !principal.CanManageClubs {
		t.Fatalf("unexpected principal %+v", principal)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/auth/v1/me", nil, map[string]string{
		"Authorization": "Bearer not-a-real-token",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for junk token, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %s", code)
	}
}

func TestBearerTokenVoteCarriesSessionIdentity(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodPost, "/api/auth/v1/register", map[string]string{
		"name":     "Yonas Girma",
		"email":    "yonas@example.edu",
		"password": "s3cret!",
	}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rr.Code, rr.Body.String())
	}
	var user struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	rr = doJSON(t, server, http.MethodPost, "/api/auth/v1/login", map[string]string{
		"email":    "yonas@example.edu",
		"password": "s3cret!",
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d", rr.Code)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	electionID := seedOngoingElection(t, server, user.UserID)
	rr = doJSON(t, server, http.MethodPost, "/api/elections/v1/elections/"+electionID+"/votes",
		map[string]string{"candidate_id": "cand-a"}, map[string]string{"Authorization": "Bearer " + login.Token})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 voting with bearer identity, got %d: %s", rr.Code, rr.Body.String())
	}
	var ballot struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &ballot); err != nil {
		t.Fatalf("decode ballot: %v", err)
	}
	if ballot.CandidateID != "cand-a" {
		t.Fatalf("unexpected ballot %+v", ballot)
	}
}
