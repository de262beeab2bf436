package repository

import (
	"context"
	"time"

	"equiherds/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	Category        string     `gorm:"column:category;index"`
	ListingID       int64      `gorm:"column:listing_id;index"`
	BuyerID         int64      `gorm:"column:buyer_id;index"`
	SellerID        int64      `gorm:"column:seller_id;index"`
	StartDate       time.Time  `gorm:"column:start_date"`
	EndDate         time.Time  `gorm:"column:end_date"`
	Quantity        int64      `gorm:"column:quantity"`
	UnitPrice       float64    `gorm:"column:unit_price"`
	DiscountPercent float64    `gorm:"column:discount_percent"`
	AddOnBreakdown  *string    `gorm:"column:add_on_breakdown;type:text"`
	DeliveryCharge  float64    `gorm:"column:delivery_charge"`
	TotalPrice      float64    `gorm:"column:total_price"`
	PaymentToken    *string    `gorm:"column:payment_token"`
	ChargeID        *string    `gorm:"column:charge_id"`
	Status          string     `gorm:"column:status;index"`
	Reason          *string    `gorm:"column:reason;type:text"`
	Location        *string    `gorm:"column:location"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	CancelledAt     *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:              m.ID,
		Category:        domain.Category(m.Category),
		ListingID:       m.ListingID,
		BuyerID:         m.BuyerID,
		SellerID:        m.SellerID,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		AddOnBreakdown:  deref(m.AddOnBreakdown),
		DeliveryCharge:  m.DeliveryCharge,
		TotalPrice:      m.TotalPrice,
		PaymentToken:    deref(m.PaymentToken),
		ChargeID:        deref(m.ChargeID),
		Status:          domain.BookingStatus(m.Status),
		Reason:          deref(m.Reason),
		Location:        deref(m.Location),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		CancelledAt:     m.CancelledAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:              b.ID,
		Category:        string(b.Category),
		ListingID:       b.ListingID,
		BuyerID:         b.BuyerID,
		SellerID:        b.SellerID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		Quantity:        b.Quantity,
		UnitPrice:       b.UnitPrice,
		DiscountPercent: b.DiscountPercent,
		AddOnBreakdown:  ref(b.AddOnBreakdown),
		DeliveryCharge:  b.DeliveryCharge,
		TotalPrice:      b.TotalPrice,
		PaymentToken:    ref(b.PaymentToken),
		ChargeID:        ref(b.ChargeID),
		Status:          string(b.Status),
		Reason:          ref(b.Reason),
		Location:        ref(b.Location),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		CancelledAt:     b.CancelledAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// ConfirmIfPending is the single-writer guard for payment capture: the
// transition commits only if the row is still pending. Returns false when
// another writer got there first.
func (r *BookingRepository) ConfirmIfPending(ctx context.Context, id int64, chargeID string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(domain.BookingPending)).
		Updates(map[string]any{
			"status":     string(domain.BookingConfirmed),
			"charge_id":  chargeID,
			"updated_at": time.Now(),
		})
	return tx.RowsAffected > 0, tx.Error
}

// CancelIfPending conditionally moves a pending booking to cancelled,
// recording the caller's reason.
func (r *BookingRepository) CancelIfPending(ctx context.Context, id int64, reason string) (bool, error) {
	now := time.Now()
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(domain.BookingPending)).
		Updates(map[string]any{
			"status":       string(domain.BookingCancelled),
			"reason":       reason,
			"cancelled_at": now,
			"updated_at":   now,
		})
	return tx.RowsAffected > 0, tx.Error
}

// ResolveIfPending conditionally moves a pending appointment booking to
// approved or rejected.
func (r *BookingRepository) ResolveIfPending(ctx context.Context, id int64, to domain.BookingStatus, reason string) (bool, error) {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if reason != "" {
		updates["reason"] = reason
	}
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(domain.BookingPending)).
		Updates(updates)
	return tx.RowsAffected > 0, tx.Error
}

func (r *BookingRepository) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, limit, offset)
}

func (r *BookingRepository) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]domain.Booking, error) {
	return r.list(ctx, "seller_id = ?", sellerID, limit, offset)
}

func (r *BookingRepository) list(ctx context.Context, cond string, arg int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
