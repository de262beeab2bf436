package payment

import "errors"

var (
	ErrInvalidCard   = errors.New("card details are incomplete or invalid")
	ErrInvalidAmount = errors.New("charge amount must be positive")
	ErrAuthorization = errors.New("payment authorization failed")
	ErrCapture       = errors.New("payment capture failed")
)
