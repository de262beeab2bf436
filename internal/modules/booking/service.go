package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"equiherds/internal/domain"
	"equiherds/internal/modules/catalog"
	"equiherds/internal/modules/pricing"
	"equiherds/internal/pkg/validator"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	bookings  BookingRepository
	listings  ListingSource
	processor ChargeProcessor
	log       *logrus.Logger

	// serializes state transitions per booking id within this process;
	// the conditional update in the repository is the cross-process guard
	transitionLocks sync.Map
}

func NewService(bookings BookingRepository, listings ListingSource, processor ChargeProcessor, log *logrus.Logger) *Service {
	return &Service{
		bookings:  bookings,
		listings:  listings,
		processor: processor,
		log:       log,
	}
}

// Create prices the request and persists the booking as pending. For
// charge-gated categories a payment token must already exist; tokenization
// failure upstream means this is never reached and nothing is persisted.
func (s *Service) Create(ctx context.Context, buyerID int64, req CreateBookingRequest) (*domain.Booking, *pricing.Breakdown, error) {
	target, err := req.resolveTarget()
	if err != nil {
		return nil, nil, err
	}

	if err := validateRequest(target.category, req); err != nil {
		return nil, nil, err
	}

	listing, err := s.listings.GetListing(ctx, target.listingID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: listing %d", ErrNotFound, target.listingID)
		}
		if errors.Is(err, catalog.ErrValidation) {
			return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, nil, err
	}
	if listing.Category != target.category {
		return nil, nil, fmt.Errorf("%w: listing %d is not a %s listing", ErrValidation, target.listingID, target.category)
	}
	if listing.SellerID == buyerID {
		return nil, nil, fmt.Errorf("%w: cannot book your own listing", ErrValidation)
	}

	quote, err := pricing.Quote(listing, pricing.Request{
		Category:       target.category,
		Quantity:       req.Quantity,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		SelectedAddOns: req.SelectedAddOns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	addOnBlob, err := json.Marshal(quote.AddOns)
	if err != nil {
		return nil, nil, err
	}

	b := &domain.Booking{
		Category:        target.category,
		ListingID:       listing.ID,
		BuyerID:         buyerID,
		SellerID:        listing.SellerID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Quantity:        quote.Multiplier,
		UnitPrice:       listing.UnitPrice,
		DiscountPercent: listing.DiscountPercent,
		AddOnBreakdown:  string(addOnBlob),
		DeliveryCharge:  quote.DeliveryCharge.InexactFloat64(),
		TotalPrice:      quote.Total.InexactFloat64(),
		PaymentToken:    req.PaymentToken,
		Status:          domain.BookingPending,
		Location:        req.Location,
	}

	if fields := validator.Validate(b); fields != nil {
		return nil, nil, fmt.Errorf("%w: invalid booking fields %v", ErrValidation, fields)
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, nil, fmt.Errorf("%w: referenced listing or user no longer exists", ErrValidation)
		}
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"category":   b.Category,
		"buyer_id":   b.BuyerID,
		"total":      b.TotalPrice,
	}).Info("booking created")

	return b, quote, nil
}

func validateRequest(category domain.Category, req CreateBookingRequest) error {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if req.EndDate.Before(req.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrValidation)
	}

	switch category {
	case domain.CategoryEquipment:
		if req.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		if req.Location == "" {
			return fmt.Errorf("%w: delivery location is required for equipment", ErrValidation)
		}
	case domain.CategoryHorse:
		if !req.StartDate.Equal(req.EndDate) {
			return fmt.Errorf("%w: viewing appointments are a single slot", ErrValidation)
		}
	}

	if category.RequiresCapture() && req.PaymentToken == "" {
		return fmt.Errorf("%w: payment token is required", ErrValidation)
	}
	return nil
}

// Confirm captures payment with the stored token and moves the booking from
// pending to confirmed. Retrying on an already-confirmed booking is a no-op
// returning the existing record, never a second charge. On capture failure
// the booking stays pending and the error surfaces to the caller.
func (s *Service) Confirm(ctx context.Context, id, actorID int64, actorRole domain.UserRole) (*domain.Booking, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSeller(b, actorID, actorRole); err != nil {
		return nil, err
	}

	if b.Status == domain.BookingConfirmed {
		// idempotent re-confirm: existing charge record, no new charge
		return b, nil
	}
	if b.Status != domain.BookingPending {
		return nil, fmt.Errorf("%w: cannot confirm from %s", ErrStateTransition, b.Status)
	}
	if !b.Category.RequiresCapture() {
		return nil, fmt.Errorf("%w: appointment bookings are approved, not confirmed", ErrValidation)
	}
	if b.PaymentToken == "" {
		return nil, fmt.Errorf("%w: booking has no stored payment token", ErrValidation)
	}

	res, err := s.processor.Charge(ctx, b.PaymentToken, decimal.NewFromFloat(b.TotalPrice), b.ID)
	if err != nil {
		return nil, err
	}

	ok, err := s.bookings.ConfirmIfPending(ctx, id, res.ChargeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// a concurrent writer moved the booking after our read; the
		// charge stands and needs operator attention
		s.log.WithFields(logrus.Fields{
			"booking_id": id,
			"charge_id":  res.ChargeID,
		}).Error("charge captured but booking left pending state concurrently")
		return nil, fmt.Errorf("%w: booking state changed during confirmation", ErrStateTransition)
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "charge_id": res.ChargeID}).Info("booking confirmed")
	return s.getBooking(ctx, id)
}

// Cancel is only valid from pending; no charge has happened, so there is
// nothing to refund. It takes the same per-booking lock as Confirm so a
// cancel cannot slip in while a charge is in flight.
func (s *Service) Cancel(ctx context.Context, id, actorID int64, actorRole domain.UserRole, reason string) (*domain.Booking, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireParty(b, actorID, actorRole); err != nil {
		return nil, err
	}

	ok, err := s.bookings.CancelIfPending(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrStateTransition, b.Status)
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "reason": reason}).Info("booking cancelled")
	return s.getBooking(ctx, id)
}

// Approve accepts an appointment-style booking; no payment gate exists for
// those.
func (s *Service) Approve(ctx context.Context, id, actorID int64, actorRole domain.UserRole) (*domain.Booking, error) {
	return s.resolve(ctx, id, actorID, actorRole, domain.BookingApproved, "")
}

// Reject declines an appointment-style booking; a non-empty reason is
// mandatory.
func (s *Service) Reject(ctx context.Context, id, actorID int64, actorRole domain.UserRole, reason string) (*domain.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a rejection reason is required", ErrValidation)
	}
	return s.resolve(ctx, id, actorID, actorRole, domain.BookingRejected, reason)
}

func (s *Service) resolve(ctx context.Context, id, actorID int64, actorRole domain.UserRole, to domain.BookingStatus, reason string) (*domain.Booking, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSeller(b, actorID, actorRole); err != nil {
		return nil, err
	}
	if b.Category.RequiresCapture() {
		return nil, fmt.Errorf("%w: %s bookings are confirmed through payment capture", ErrValidation, b.Category)
	}

	ok, err := s.bookings.ResolveIfPending(ctx, id, to, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrStateTransition, b.Status, to)
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "status": to}).Info("appointment resolved")
	return s.getBooking(ctx, id)
}

// ListForBuyer returns the buyer's bookings, newest first, with derived
// statuses attached.
func (s *Service) ListForBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]BookingDetails, error) {
	rows, err := s.bookings.ListByBuyer(ctx, buyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return withDerived(rows), nil
}

// ListForSeller returns bookings on the seller's listings.
func (s *Service) ListForSeller(ctx context.Context, sellerID int64, limit, offset int) ([]BookingDetails, error) {
	rows, err := s.bookings.ListBySeller(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return withDerived(rows), nil
}

func withDerived(rows []domain.Booking) []BookingDetails {
	now := time.Now()
	out := make([]BookingDetails, 0, len(rows))
	for _, b := range rows {
		out = append(out, BookingDetails{Booking: b, DerivedStatus: b.DerivedStatus(now)})
	}
	return out
}

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) lockFor(id int64) *sync.Mutex {
	v, _ := s.transitionLocks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func requireSeller(b *domain.Booking, actorID int64, role domain.UserRole) error {
	if role == domain.RoleAdmin || b.SellerID == actorID {
		return nil
	}
	return ErrForbidden
}

func requireParty(b *domain.Booking, actorID int64, role domain.UserRole) error {
	if role == domain.RoleAdmin || b.SellerID == actorID || b.BuyerID == actorID {
		return nil
	}
	return ErrForbidden
}
