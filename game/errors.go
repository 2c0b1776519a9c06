// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/squid-demos/models"
)

// Error kinds. Handlers map these to status codes with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrStateConflict = errors.New("state conflict")
	ErrQuotaExceeded = errors.New("vote quota exceeded")
	ErrDuplicateVote = errors.New("you have already voted for this participant")
)

// Specific failures, each wrapping one of the kinds above.
var (
	ErrInvalidStatus     = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrVotingClosed      = fmt.Errorf("%w: voting is not currently open for this session", ErrStateConflict)
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrStateConflict)
	ErrConcurrentVote    = fmt.Errorf("%w: another vote from this device is in progress", ErrStateConflict)
	ErrSeasonNotActive   = fmt.Errorf("%w: season is not active", ErrStateConflict)
	ErrAlreadyFinalized  = fmt.Errorf("%w: season already has a finale", ErrStateConflict)
	ErrSeasonNotInFinale = fmt.Errorf("%w: season is not in its finale", ErrStateConflict)
	ErrSeasonInProgress  = fmt.Errorf("%w: another season is still running", ErrStateConflict)
	ErrPlayerNumberTaken = fmt.Errorf("%w: player number already taken in this session", ErrStateConflict)
	ErrSessionLocked     = fmt.Errorf("%w: session no longer accepts participants", ErrStateConflict)
)

// QuotaError reports how many votes the device may still cast.
type QuotaError struct {
	Used      int
	Remaining int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("maximum %d votes allowed per device, you have %d vote(s) remaining",
		models.MaxVotesPerDevice, e.Remaining)
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}

func newQuotaError(used int) *QuotaError {
	return &QuotaError{Used: used, Remaining: max(models.MaxVotesPerDevice-used, 0)}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
