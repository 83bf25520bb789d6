package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service for a rejected request wraps exactly
// one of these, so the boundary can translate with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrSelfReference    = errors.New("self reference")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("not authorized")
	ErrInvalidState     = errors.New("invalid state")
	ErrDuplicatePending = errors.New("duplicate pending interaction")
	ErrDuplicateRating  = errors.New("duplicate rating")
)

var (
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)

	ErrInteractionSelf          = fmt.Errorf("%w: cannot create an interaction with yourself", ErrSelfReference)
	ErrInteractionPendingExists = fmt.Errorf("%w: a pending interaction already exists", ErrDuplicatePending)
	ErrInteractionNotFound      = fmt.Errorf("%w: interaction not found", ErrNotFound)
	ErrNotInteractionTarget     = fmt.Errorf("%w: only the target can respond to this interaction", ErrUnauthorized)
	ErrInteractionNotPending    = fmt.Errorf("%w: interaction is not pending", ErrInvalidState)
	ErrInvalidRole              = fmt.Errorf("%w: role must be initiator or target", ErrValidation)

	ErrInteractionNotAccepted = fmt.Errorf("%w: can only rate an accepted interaction", ErrInvalidState)
	ErrNotInteractionMember   = fmt.Errorf("%w: not a participant of this interaction", ErrUnauthorized)
	ErrRatingExists           = fmt.Errorf("%w: user has already rated this interaction", ErrDuplicateRating)

	ErrEndorseSelf = fmt.Errorf("%w: cannot endorse yourself", ErrSelfReference)
)

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
