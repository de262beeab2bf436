package booking

import (
	"fmt"
	"time"

	"equiherds/internal/domain"
)

// CreateBookingRequest carries the buyer's raw intent. Exactly one of the
// category id fields must be set; resolveTarget turns that into a tagged
// target once, at the boundary, so nothing downstream re-sniffs shapes.
type CreateBookingRequest struct {
	EquipmentID *int64 `json:"equipment_id,omitempty"`
	HorseID     *int64 `json:"horse_id,omitempty"`
	ServiceID   *int64 `json:"service_id,omitempty"`
	StableID    *int64 `json:"stable_id,omitempty"`
	TrainerID   *int64 `json:"trainer_id,omitempty"`

	Quantity       int64     `json:"quantity"`
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
	SelectedAddOns []string  `json:"selected_add_ons"`
	Location       string    `json:"location"`
	PaymentToken   string    `json:"payment_token"`
}

type bookingTarget struct {
	category  domain.Category
	listingID int64
}

func (r CreateBookingRequest) resolveTarget() (bookingTarget, error) {
	var targets []bookingTarget
	add := func(c domain.Category, id *int64) {
		if id != nil {
			targets = append(targets, bookingTarget{category: c, listingID: *id})
		}
	}
	add(domain.CategoryEquipment, r.EquipmentID)
	add(domain.CategoryHorse, r.HorseID)
	add(domain.CategoryService, r.ServiceID)
	add(domain.CategoryStable, r.StableID)
	add(domain.CategoryTrainer, r.TrainerID)

	if len(targets) != 1 {
		return bookingTarget{}, fmt.Errorf("%w: exactly one listing id must be set, got %d", ErrValidation, len(targets))
	}
	return targets[0], nil
}

// ReasonRequest accompanies cancel and reject calls.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// BookingDetails is a booking plus its time-derived status for the read
// path. The derived value is informational and never persisted.
type BookingDetails struct {
	domain.Booking
	DerivedStatus domain.BookingStatus `json:"derived_status"`
}
