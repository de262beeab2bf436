package repository

import (
	"context"
	"errors"
	"time"

	"equiherds/internal/domain"

	"gorm.io/gorm"
)

// ErrLimitReached is returned when the in-transaction quota re-check fails.
// The evaluator's earlier read is advisory; this is the one that counts.
var ErrLimitReached = errors.New("listing limit reached")

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// ListingRecord is the raw catalog row as stored: optional fields nullable,
// JSON blobs still serialized, owner sub-record unflattened. The catalog
// normalizer turns this into a domain.Listing.
type ListingRecord struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	Category        string     `gorm:"column:category;index"`
	Title           *string    `gorm:"column:title"`
	SellerID        int64      `gorm:"column:seller_id;index"`
	UnitPrice       *float64   `gorm:"column:unit_price"`
	DiscountPercent *float64   `gorm:"column:discount_percent"`
	DeliveryCharge  *float64   `gorm:"column:delivery_charge"`
	PerHourAddOns   *string    `gorm:"column:per_hour_add_ons;type:text"`
	Schedule        *string    `gorm:"column:schedule;type:text"`
	Photos          *string    `gorm:"column:photos;type:text"`
	Owner           *string    `gorm:"column:owner;type:text"`
	Deleted         bool       `gorm:"column:deleted;index"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	DeletedAt       *time.Time `gorm:"column:deleted_at"`
}

func (ListingRecord) TableName() string { return "listings" }

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*ListingRecord, error) {
	var rec ListingRecord
	tx := r.db.WithContext(ctx).Where("deleted = ?", false).First(&rec, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &rec, nil
}

func (r *ListingRepository) CountBySellerAndCategory(ctx context.Context, sellerID int64, category domain.Category) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).
		Model(&ListingRecord{}).
		Where("seller_id = ? AND category = ? AND deleted = ?", sellerID, string(category), false).
		Count(&count)
	return count, tx.Error
}

// CreateWithinQuota re-runs the count against the seller's cap and inserts
// in the same transaction, so two concurrent creates cannot both slip under
// the limit. limit < 0 means no cap.
func (r *ListingRepository) CreateWithinQuota(ctx context.Context, rec *ListingRecord, limit int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limit >= 0 {
			var count int64
			if err := tx.Model(&ListingRecord{}).
				Where("seller_id = ? AND category = ? AND deleted = ?", rec.SellerID, rec.Category, false).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= limit {
				return ErrLimitReached
			}
		}
		return tx.Create(rec).Error
	})
}
