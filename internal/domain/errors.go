package domain

import "errors"

var (
	// ErrInvestmentNotFound is returned when an investment id has no record
	ErrInvestmentNotFound = errors.New("investment not found")

	// ErrIncompleteSnapshot is returned when no complete snapshot arrived within the retry bound
	ErrIncompleteSnapshot = errors.New("incomplete snapshot")

	// ErrSelectionExpired is returned when a selection token is unknown, consumed or expired
	ErrSelectionExpired = errors.New("selection expired")

	// ErrAlreadyTracking is returned when a subscription already exists
	ErrAlreadyTracking = errors.New("already tracking")

	// ErrNotTracking is returned when removing a subscription that does not exist
	ErrNotTracking = errors.New("not tracking")

	// ErrNotMember is returned when the acting user lacks the restricted tier
	ErrNotMember = errors.New("not a member")

	// ErrUnknownAction is returned for interaction ids the bot does not handle
	ErrUnknownAction = errors.New("unknown action")

	// ErrTicketExists is returned when a user already has an open ticket
	ErrTicketExists = errors.New("ticket already exists")
)
