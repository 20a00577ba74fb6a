package errors

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrPostNotFound      = errors.New("post not found")
	ErrReportNotFound    = errors.New("report not found")
	ErrInsufficientStake = errors.New("stake is below the minimum")
	ErrDuplicateVote     = errors.New("voter already voted on this report")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTransferFailed    = errors.New("ledger transfer failed")
	ErrVotingPeriodEnded = errors.New("voting period constraint violated")
	ErrInvalidVote       = errors.New("report has no votes to resolve")
	ErrNotModerator      = errors.New("caller is not a moderator")
	ErrUnauthorized      = errors.New("reputation below moderator threshold")

	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
)
