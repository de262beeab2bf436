package payment

// PayerIdentity is the already-authenticated user on whose behalf a payment
// instrument is tokenized.
type PayerIdentity struct {
	UserID int64
	Email  string
}

// CardDetails never touches persistence; it exists only for the duration of
// a tokenize call.
type CardDetails struct {
	Name         string `json:"name" binding:"required"`
	Number       string `json:"number" binding:"required"`
	ExpMonth     int    `json:"exp_month" binding:"required"`
	ExpYear      int    `json:"exp_year" binding:"required"`
	SecurityCode string `json:"security_code" binding:"required"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
}

// TokenResult proves a valid instrument without moving funds.
type TokenResult struct {
	TokenID string `json:"token_id"`
	Status  string `json:"status"`
}

// ChargeResult is the processor's authoritative answer to a capture.
type ChargeResult struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
}

const (
	StatusAuthorized = "authorized"
	StatusSucceeded  = "succeeded"
)
