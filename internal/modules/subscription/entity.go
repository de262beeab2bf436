package subscription

import (
	"database/sql"
	"time"

	"equiherds/internal/domain"
)

// PlanID identifies a subscription tier
type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanStarter PlanID = "starter"
	PlanPro     PlanID = "pro"
)

// Status of a subscription
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// BillingPeriod for subscription cycle
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// Plan defines a subscription tier available to sellers. Listing limits are
// stored as symbolic tokens per category: a non-negative number,
// "unlimited", or "Not Allowed". The quota evaluator owns parsing.
type Plan struct {
	ID          PlanID `gorm:"column:id;primaryKey" json:"id"`
	Name        string `gorm:"column:name" json:"name"`
	Description string `gorm:"column:description" json:"description"`

	PriceMonthly float64  `gorm:"column:price_monthly" json:"price_monthly"`
	PriceYearly  *float64 `gorm:"column:price_yearly" json:"price_yearly,omitempty"`

	EquipmentLimit string `gorm:"column:equipment_limit" json:"equipment_limit"`
	HorseLimit     string `gorm:"column:horse_limit" json:"horse_limit"`
	ServiceLimit   string `gorm:"column:service_limit" json:"service_limit"`
	StableLimit    string `gorm:"column:stable_limit" json:"stable_limit"`
	TrainerLimit   string `gorm:"column:trainer_limit" json:"trainer_limit"`

	IsActive  bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Plan) TableName() string { return "subscription_plans" }

// LimitTokens maps each listing category to the plan's raw limit token.
func (p *Plan) LimitTokens() map[domain.Category]string {
	return map[domain.Category]string{
		domain.CategoryEquipment: p.EquipmentLimit,
		domain.CategoryHorse:     p.HorseLimit,
		domain.CategoryService:   p.ServiceLimit,
		domain.CategoryStable:    p.StableLimit,
		domain.CategoryTrainer:   p.TrainerLimit,
	}
}

// Subscription tracks an active plan for a seller.
type Subscription struct {
	ID            string         `gorm:"column:id;primaryKey" json:"id"`
	SellerID      int64          `gorm:"column:seller_id" json:"seller_id"`
	PlanID        PlanID         `gorm:"column:plan_id" json:"plan_id"`
	Status        Status         `gorm:"column:status" json:"status"`
	BillingPeriod BillingPeriod  `gorm:"column:billing_period" json:"billing_period"`
	StartedAt     time.Time      `gorm:"column:started_at" json:"started_at"`
	ExpiresAt     sql.NullTime   `gorm:"column:expires_at" json:"expires_at,omitempty"`
	AutoRenew     bool           `gorm:"column:auto_renew" json:"auto_renew"`
	CancelReason  sql.NullString `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	CancelledAt   sql.NullTime   `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// IsExpired checks if the subscription has passed its expiry date
func (s *Subscription) IsExpired() bool {
	if !s.ExpiresAt.Valid {
		return false
	}
	return time.Now().After(s.ExpiresAt.Time)
}

// IsActive checks if subscription is currently usable
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive && !s.IsExpired()
}

// DaysRemaining returns days until expiry (-1 = unlimited)
func (s *Subscription) DaysRemaining() int {
	if !s.ExpiresAt.Valid {
		return -1
	}
	remaining := time.Until(s.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Hours() / 24)
}
