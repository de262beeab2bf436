package quota

import (
	"errors"
	"fmt"

	"equiherds/internal/domain"
)

var (
	ErrNoActivePlan    = errors.New("no active plan")
	ErrQuotaExceeded   = errors.New("listing limit reached for your current plan")
	ErrUnknownCategory = errors.New("unknown listing category")
)

// LimitError carries the limiting category and counts for the response body.
type LimitError struct {
	Err      error
	Category domain.Category
	Current  int64
	Limit    int64
	Plan     string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %s (%d/%d on plan %q)", e.Err, e.Category, e.Current, e.Limit, e.Plan)
}

func (e *LimitError) Unwrap() error { return e.Err }
