package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CandidateInput struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
}

type CreateElectionRequest struct {
	Title      string           `json:"title"`
	Scope      string           `json:"scope"`
	Candidates []CandidateInput `json:"candidates"`
	OpensAt    string           `json:"opens_at"`
	ClosesAt   string           `json:"closes_at"`
}

type CandidateResponse struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int    `json:"votes"`
}

type ElectionResponse struct {
	ElectionID  string              `json:"election_id"`
	Title       string              `json:"title"`
	Scope       string              `json:"scope"`
	Status      string              `json:"status"`
	OpensAt     string              `json:"opens_at"`
	ClosesAt    string              `json:"closes_at"`
	Announced   bool                `json:"announced"`
	AnnouncedAt string              `json:"announced_at,omitempty"`
	Candidates  []CandidateResponse `json:"candidates"`
	Results     []TallyEntry        `json:"results,omitempty"`
}

type ElectionListResponse struct {
	Items []ElectionResponse `json:"items"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type BallotResponse struct {
	BallotID    string `json:"ballot_id"`
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	CastAt      string `json:"cast_at"`
}

type TallyEntry struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int    `json:"votes"`
	Rank        int    `json:"rank"`
}

type ResultsResponse struct {
	ElectionID string       `json:"election_id"`
	Status     string       `json:"status"`
	Announced  bool         `json:"announced"`
	Tally      []TallyEntry `json:"tally"`
}
