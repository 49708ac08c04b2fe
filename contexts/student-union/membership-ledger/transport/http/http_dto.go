package httptransport

// ErrorResponse is the uniform error body for the membership-ledger surface.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type JoinRequestBody struct {
	UserID string `json:"user_id"`
}

type DecisionRequest struct {
	ApproverID string `json:"approver_id,omitempty"`
}

type MembershipRequestResponse struct {
	RequestID   string `json:"request_id"`
	ClubID      string `json:"club_id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	RequestedAt string `json:"requested_at"`
	DecidedAt   string `json:"decided_at,omitempty"`
	DecidedBy   string `json:"decided_by,omitempty"`
}

type AssignLeadershipRequest struct {
	Slot   string `json:"slot"`
	UserID string `json:"user_id"`
}

type MemberResponse struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

type BudgetResponse struct {
	Allocated int64 `json:"allocated"`
	Spent     int64 `json:"spent"`
	Remaining int64 `json:"remaining"`
}

type ClubResponse struct {
	ClubID     string            `json:"club_id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Status     string            `json:"status"`
	Members    []MemberResponse  `json:"members"`
	Leadership map[string]string `json:"leadership"`
	Budget     BudgetResponse    `json:"budget"`
}

type SpendRequest struct {
	Amount int64 `json:"amount"`
}

type AllocateRequest struct {
	Amount int64 `json:"amount"`
}

type RequestListResponse struct {
	Items []MembershipRequestResponse `json:"items"`
}

type MemberIDsResponse struct {
	ClubID    string   `json:"club_id"`
	MemberIDs []string `json:"member_ids"`
}
