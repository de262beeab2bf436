package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingApproved  BookingStatus = "approved"
	BookingCancelled BookingStatus = "cancelled"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
	BookingActive    BookingStatus = "active" // derived only, never persisted
)

// Terminal reports whether no further confirm/cancel transition may leave s.
func (s BookingStatus) Terminal() bool { return s != BookingPending }

type Booking struct {
	ID              int64         `json:"id"`
	Category        Category      `json:"category"`
	ListingID       int64         `json:"listing_id" validate:"required"`
	BuyerID         int64         `json:"buyer_id" validate:"required"`
	SellerID        int64         `json:"seller_id" validate:"required"`
	StartDate       time.Time     `json:"start_date" validate:"required"`
	EndDate         time.Time     `json:"end_date" validate:"required"`
	Quantity        int64         `json:"quantity"`
	UnitPrice       float64       `json:"unit_price"`
	DiscountPercent float64       `json:"discount_percent"`
	AddOnBreakdown  string        `json:"add_on_breakdown,omitempty" gorm:"type:text"`
	DeliveryCharge  float64       `json:"delivery_charge"`
	TotalPrice      float64       `json:"total_price" validate:"gte=0"`
	PaymentToken    string        `json:"-"`
	ChargeID        string        `json:"charge_id,omitempty"`
	Status          BookingStatus `json:"status"`
	Reason          string        `json:"reason,omitempty" gorm:"type:text"`
	Location        string        `json:"location,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty"`
}

// DerivedStatus maps the booking's date range onto an informational status
// for the read path. A persisted terminal status always wins; the derived
// value never overwrites anything.
func (b *Booking) DerivedStatus(now time.Time) BookingStatus {
	switch b.Status {
	case BookingCancelled, BookingRejected, BookingCompleted:
		return b.Status
	}
	switch {
	case now.Before(b.StartDate):
		return BookingPending
	case now.After(b.EndDate):
		return BookingCompleted
	default:
		return BookingActive
	}
}
