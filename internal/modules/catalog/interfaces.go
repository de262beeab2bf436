package catalog

import (
	"context"

	"equiherds/internal/domain"
	"equiherds/internal/repository"
)

// ListingStore is the slice of the listing repository this module needs.
type ListingStore interface {
	GetByID(ctx context.Context, id int64) (*repository.ListingRecord, error)
	CreateWithinQuota(ctx context.Context, rec *repository.ListingRecord, limit int64) error
}

// QuotaChecker gates listing creation against the seller's plan.
type QuotaChecker interface {
	CanCreate(ctx context.Context, userID int64, role domain.UserRole, category domain.Category) error
	Limit(ctx context.Context, userID int64, role domain.UserRole, category domain.Category) (int64, error)
}
