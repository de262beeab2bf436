package catalog

import (
	"encoding/json"
	"fmt"

	"equiherds/internal/domain"
	"equiherds/internal/repository"
)

// placeholderPhoto stands in for listings stored without any media.
const placeholderPhoto = "/static/placeholder-listing.png"

// NormalizeListing maps a raw catalog row onto the canonical listing the
// pricing and booking paths consume. Optional fields get defaults; a missing
// id or unit price is a validation error, never defaulted.
func NormalizeListing(rec *repository.ListingRecord) (*domain.Listing, error) {
	if rec == nil || rec.ID == 0 {
		return nil, fmt.Errorf("%w: missing listing id", ErrValidation)
	}
	if rec.UnitPrice == nil {
		return nil, fmt.Errorf("%w: missing unit price", ErrValidation)
	}
	category := domain.Category(rec.Category)
	if !domain.KnownCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, rec.Category)
	}

	l := &domain.Listing{
		ID:            rec.ID,
		Category:      category,
		SellerID:      rec.SellerID,
		UnitPrice:     *rec.UnitPrice,
		PerHourAddOns: map[string]float64{},
		CreatedAt:     rec.CreatedAt,
	}

	if rec.Title != nil {
		l.Title = *rec.Title
	}
	if rec.DiscountPercent != nil {
		l.DiscountPercent = *rec.DiscountPercent
	}
	if rec.DeliveryCharge != nil {
		l.DeliveryCharge = *rec.DeliveryCharge
	}

	if rec.PerHourAddOns != nil {
		if err := json.Unmarshal([]byte(*rec.PerHourAddOns), &l.PerHourAddOns); err != nil {
			return nil, fmt.Errorf("%w: malformed add-on map: %v", ErrValidation, err)
		}
	}
	if rec.Schedule != nil {
		if err := json.Unmarshal([]byte(*rec.Schedule), &l.Schedule); err != nil {
			return nil, fmt.Errorf("%w: malformed schedule: %v", ErrValidation, err)
		}
	}
	if rec.Photos != nil {
		if err := json.Unmarshal([]byte(*rec.Photos), &l.Photos); err != nil {
			return nil, fmt.Errorf("%w: malformed photo list: %v", ErrValidation, err)
		}
	}
	if len(l.Photos) == 0 {
		l.Photos = []string{placeholderPhoto}
	}

	if rec.Owner != nil {
		var owner rawOwner
		if err := json.Unmarshal([]byte(*rec.Owner), &owner); err != nil {
			return nil, fmt.Errorf("%w: malformed owner record: %v", ErrValidation, err)
		}
		l.OwnerName = owner.Name
		l.OwnerEmail = owner.Email
	}

	return l, nil
}
