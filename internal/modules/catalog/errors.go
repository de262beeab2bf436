package catalog

import "errors"

var (
	ErrValidation = errors.New("listing validation error")
	ErrNotFound   = errors.New("listing not found")
	ErrForbidden  = errors.New("forbidden")
)
