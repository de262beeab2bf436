package domain

import "time"

type Category string

const (
	CategoryEquipment Category = "equipment"
	CategoryHorse     Category = "horse"
	CategoryService   Category = "service"
	CategoryStable    Category = "stable"
	CategoryTrainer   Category = "trainer"
)

// KnownCategory reports whether c is one of the marketplace categories.
func KnownCategory(c Category) bool {
	switch c {
	case CategoryEquipment, CategoryHorse, CategoryService, CategoryStable, CategoryTrainer:
		return true
	}
	return false
}

// RequiresCapture reports whether bookings of this category go through the
// tokenize-then-charge flow. Horse-viewing appointments are approve/reject
// only and never hold a payment instrument.
func (c Category) RequiresCapture() bool { return c != CategoryHorse }

// ScheduleSlot is one recurring availability window on a listing.
type ScheduleSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Listing is the slice of a catalog record the booking engine reads.
// The catalog service owns the rest (descriptions, media, location).
type Listing struct {
	ID              int64              `json:"id"`
	Category        Category           `json:"category"`
	Title           string             `json:"title"`
	SellerID        int64              `json:"seller_id"`
	UnitPrice       float64            `json:"unit_price" validate:"gte=0"`
	DiscountPercent float64            `json:"discount_percent" validate:"gte=0,lte=100"`
	DeliveryCharge  float64            `json:"delivery_charge,omitempty"`
	PerHourAddOns   map[string]float64 `json:"per_hour_add_ons,omitempty" gorm:"-"`
	Schedule        []ScheduleSlot     `json:"schedule,omitempty" gorm:"-"`
	Photos          []string           `json:"photos" gorm:"-"`
	OwnerName       string             `json:"owner_name,omitempty"`
	OwnerEmail      string             `json:"owner_email,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}
