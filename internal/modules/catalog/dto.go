package catalog

import "equiherds/internal/domain"

type CreateListingRequest struct {
	Category        domain.Category       `json:"category" binding:"required"`
	Title           string                `json:"title" binding:"required"`
	UnitPrice       float64               `json:"unit_price" binding:"required,gte=0"`
	DiscountPercent float64               `json:"discount_percent" binding:"gte=0,lte=100"`
	DeliveryCharge  float64               `json:"delivery_charge" binding:"gte=0"`
	PerHourAddOns   map[string]float64    `json:"per_hour_add_ons"`
	Schedule        []domain.ScheduleSlot `json:"schedule"`
	Photos          []string              `json:"photos"`
}

// rawOwner is the embedded owner sub-record as the catalog stores it; the
// normalizer flattens it onto the listing.
type rawOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
