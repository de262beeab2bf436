package booking

import (
	"context"

	"equiherds/internal/domain"
	"equiherds/internal/modules/payment"

	"github.com/shopspring/decimal"
)

// BookingRepository persists bookings; the conditional transitions are the
// single-writer guards for the state machine.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ConfirmIfPending(ctx context.Context, id int64, chargeID string) (bool, error)
	CancelIfPending(ctx context.Context, id int64, reason string) (bool, error)
	ResolveIfPending(ctx context.Context, id int64, to domain.BookingStatus, reason string) (bool, error)
	ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]domain.Booking, error)
	ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]domain.Booking, error)
}

// ListingSource resolves a listing id into the normalized listing.
type ListingSource interface {
	GetListing(ctx context.Context, id int64) (*domain.Listing, error)
}

// ChargeProcessor captures funds against a stored token. Only Confirm ever
// calls it.
type ChargeProcessor interface {
	Charge(ctx context.Context, token string, amount decimal.Decimal, bookingID int64) (*payment.ChargeResult, error)
}
