package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Service wraps the processor's two primitives: tokenize an instrument
// without charging it, and capture by stored token. Charges happen only
// during booking confirmation, never at creation.
type Service struct {
	client   *omise.Client
	currency string
	log      *logrus.Logger
}

func NewService(publicKey, secretKey, currency string, timeout time.Duration, log *logrus.Logger) (*Service, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	// operations carry no context, so the bound lives on the HTTP client
	client.Timeout = timeout

	return &Service{client: client, currency: currency, log: log}, nil
}

// Tokenize validates the instrument with the processor and returns an opaque
// token bound to the payer. No funds move here.
func (s *Service) Tokenize(ctx context.Context, payer PayerIdentity, card CardDetails) (*TokenResult, error) {
	if card.Number == "" || card.Name == "" || card.SecurityCode == "" ||
		card.ExpMonth < 1 || card.ExpMonth > 12 {
		return nil, ErrInvalidCard
	}
	now := time.Now()
	if card.ExpYear < now.Year() ||
		(card.ExpYear == now.Year() && time.Month(card.ExpMonth) < now.Month()) {
		return nil, ErrInvalidCard
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token := &omise.Token{}
	err := s.client.Do(token, &operations.CreateToken{
		Name:            card.Name,
		Number:          card.Number,
		ExpirationMonth: time.Month(card.ExpMonth),
		ExpirationYear:  card.ExpYear,
		SecurityCode:    card.SecurityCode,
		City:            card.City,
		PostalCode:      card.PostalCode,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"user_id": payer.UserID}).
			WithError(err).Warn("card tokenization rejected")
		return nil, fmt.Errorf("%w: %v", ErrAuthorization, err)
	}

	s.log.WithFields(logrus.Fields{"user_id": payer.UserID, "token_id": token.ID}).
		Info("payment method tokenized")
	return &TokenResult{TokenID: token.ID, Status: StatusAuthorized}, nil
}

// Charge captures funds against a previously issued token. The processor's
// answer is authoritative: there is no cancelling an issued charge.
func (s *Service) Charge(ctx context.Context, token string, amount decimal.Decimal, bookingID int64) (*ChargeResult, error) {
	if token == "" {
		return nil, ErrInvalidCard
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	charge := &omise.Charge{}
	err := s.client.Do(charge, &operations.CreateCharge{
		Amount:   ToMinorUnits(amount),
		Currency: s.currency,
		Card:     token,
		Metadata: map[string]any{"booking_id": bookingID},
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"booking_id": bookingID}).
			WithError(err).Error("charge request failed")
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	if string(charge.Status) != "successful" {
		code, message := failureDetail(charge)
		s.log.WithFields(logrus.Fields{
			"booking_id":   bookingID,
			"charge_id":    charge.ID,
			"status":       charge.Status,
			"failure_code": code,
		}).Error("charge not successful")
		return nil, fmt.Errorf("%w: %s %s", ErrCapture, code, message)
	}

	s.log.WithFields(logrus.Fields{"booking_id": bookingID, "charge_id": charge.ID}).
		Info("charge captured")
	return &ChargeResult{ChargeID: charge.ID, Status: StatusSucceeded}, nil
}

func failureDetail(ch *omise.Charge) (code, message string) {
	if ch.FailureCode != nil {
		code = *ch.FailureCode
	}
	if ch.FailureMessage != nil {
		message = *ch.FailureMessage
	}
	if code == "" {
		code = string(ch.Status)
	}
	return code, message
}

// ToMinorUnits converts a decimal major-unit amount into the processor's
// integer minor units, rounding half-up at the second decimal.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
