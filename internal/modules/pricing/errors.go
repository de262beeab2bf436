package pricing

import "errors"

var (
	ErrInvalidListing    = errors.New("listing price fields out of range")
	ErrInvalidMultiplier = errors.New("quantity or duration must be at least 1")
	ErrInvalidDateRange  = errors.New("end date is before start date")
)
