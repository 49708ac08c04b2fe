package errors

import "errors"

var (
	ErrInvalidLedgerInput = errors.New("invalid membership ledger input")
	ErrClubNotFound       = errors.New("club not found")
	ErrRequestNotFound    = errors.New("membership request not found")
	ErrInvalidTransition  = errors.New("membership request is not pending")
	ErrConflict           = errors.New("membership request conflict")
	ErrAlreadyMember      = errors.New("user is already an active member of this club")
	ErrNotAMember         = errors.New("user is not a member of this club")
	ErrForbidden          = errors.New("caller lacks the clubs-management capability")
	ErrBudgetExceeded     = errors.New("spend would exceed the allocated budget")
	ErrUnknownSlot        = errors.New("unknown leadership slot")
)
