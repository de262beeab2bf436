package booking

import "errors"

var (
	ErrValidation      = errors.New("booking validation error")
	ErrNotFound        = errors.New("booking not found")
	ErrForbidden       = errors.New("forbidden")
	ErrStateTransition = errors.New("booking is not in an eligible state for this transition")
)
