// Package validator wraps go-playground struct validation for the domain
// entities that carry `validate:` tags (bookings ahead of persistence).
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate returns nil when v passes its tags, otherwise a field → failed-tag
// map suitable for an error detail payload.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
