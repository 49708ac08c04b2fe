package errors

import "errors"

var (
	ErrInvalidElectionInput = errors.New("invalid election input")
	ErrElectionNotFound     = errors.New("election not found")
	ErrInvalidTransition    = errors.New("election status does not allow this transition")
	ErrNotEligible          = errors.New("voter is not eligible for this election")
	ErrDuplicateVote        = errors.New("voter has already cast a ballot in this election")
	ErrUnknownCandidate     = errors.New("candidate is not on this election's ballot paper")
	ErrAlreadyAnnounced     = errors.New("election results are already announced")
	ErrClubNotVotable       = errors.New("club scope does not reference an active club")
	ErrConflict             = errors.New("election conflict")
)
