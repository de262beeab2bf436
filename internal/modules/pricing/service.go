package pricing

import (
	"time"

	"equiherds/internal/domain"

	"github.com/shopspring/decimal"
)

// Request carries the buyer's intent as the normalizer produced it.
// SelectedAddOns is a set of add-on keys; unknown keys are ignored.
type Request struct {
	Category       domain.Category
	Quantity       int64
	StartDate      time.Time
	EndDate        time.Time
	SelectedAddOns []string
}

// Breakdown is the deterministic result of pricing a request against a
// listing. Identical (listing, request) pairs always produce an identical
// breakdown; every line is rounded half-up to 2 places.
type Breakdown struct {
	UnitPrice          decimal.Decimal            `json:"unit_price"`
	DiscountPercent    decimal.Decimal            `json:"discount_percent"`
	EffectiveUnitPrice decimal.Decimal            `json:"effective_unit_price"`
	Multiplier         int64                      `json:"multiplier"`
	Subtotal           decimal.Decimal            `json:"subtotal"`
	AddOns             map[string]decimal.Decimal `json:"add_ons,omitempty"`
	AddOnTotal         decimal.Decimal            `json:"add_on_total"`
	DeliveryCharge     decimal.Decimal            `json:"delivery_charge"`
	Total              decimal.Decimal            `json:"total"`
}

var hundred = decimal.NewFromInt(100)

// Quote prices a booking request. Rules apply in fixed order:
// effective unit price, multiplier, subtotal, add-ons, delivery.
func Quote(listing *domain.Listing, req Request) (*Breakdown, error) {
	unit := decimal.NewFromFloat(listing.UnitPrice)
	discount := decimal.NewFromFloat(listing.DiscountPercent)
	delivery := decimal.NewFromFloat(listing.DeliveryCharge)

	if unit.IsNegative() || delivery.IsNegative() {
		return nil, ErrInvalidListing
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return nil, ErrInvalidListing
	}

	mult, err := multiplier(req)
	if err != nil {
		return nil, err
	}

	effective := unit.Mul(hundred.Sub(discount)).Div(hundred).Round(2)
	subtotal := effective.Mul(decimal.NewFromInt(mult)).Round(2)

	addOns := make(map[string]decimal.Decimal)
	addOnTotal := decimal.Zero
	for _, key := range req.SelectedAddOns {
		price, ok := listing.PerHourAddOns[key]
		if !ok {
			continue
		}
		line := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(mult)).Round(2)
		addOns[key] = line
		addOnTotal = addOnTotal.Add(line)
	}

	total := subtotal.Add(addOnTotal).Add(delivery).Round(2)

	return &Breakdown{
		UnitPrice:          unit,
		DiscountPercent:    discount,
		EffectiveUnitPrice: effective,
		Multiplier:         mult,
		Subtotal:           subtotal,
		AddOns:             addOns,
		AddOnTotal:         addOnTotal,
		DeliveryCharge:     delivery,
		Total:              total,
	}, nil
}

// multiplier resolves how many billable units the request spans.
// Equipment bills per quantity; appointments are a single unit; the
// duration-based categories bill one unit per hour slot or one per
// inclusive calendar day of a date range.
func multiplier(req Request) (int64, error) {
	switch req.Category {
	case domain.CategoryEquipment:
		if req.Quantity < 1 {
			return 0, ErrInvalidMultiplier
		}
		return req.Quantity, nil
	case domain.CategoryHorse:
		return 1, nil
	default:
		if req.EndDate.Before(req.StartDate) {
			return 0, ErrInvalidDateRange
		}
		if req.StartDate.Equal(req.EndDate) {
			// single hourly slot
			return 1, nil
		}
		days := inclusiveDays(req.StartDate, req.EndDate)
		if days < 1 {
			return 0, ErrInvalidMultiplier
		}
		return days, nil
	}
}

func inclusiveDays(start, end time.Time) int64 {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int64(e.Sub(s).Hours()/24) + 1
}
