package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"equiherds/internal/domain"
	"equiherds/internal/modules/quota"
	"equiherds/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	listings ListingStore
	quota    QuotaChecker
	log      *logrus.Logger
}

func NewService(listings ListingStore, quotaChecker QuotaChecker, log *logrus.Logger) *Service {
	return &Service{listings: listings, quota: quotaChecker, log: log}
}

// GetListing fetches a raw catalog row and normalizes it.
func (s *Service) GetListing(ctx context.Context, id int64) (*domain.Listing, error) {
	rec, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return NormalizeListing(rec)
}

// CreateListing gates creation on the seller's subscription quota. The
// evaluator's check is advisory; the repository repeats the count inside the
// insert transaction so concurrent creates cannot both pass.
func (s *Service) CreateListing(ctx context.Context, userID int64, role domain.UserRole, req CreateListingRequest) (*domain.Listing, error) {
	if role != domain.RoleSeller && role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if !domain.KnownCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
	}
	if req.UnitPrice < 0 || req.DiscountPercent < 0 || req.DiscountPercent > 100 || req.DeliveryCharge < 0 {
		return nil, fmt.Errorf("%w: price fields out of range", ErrValidation)
	}

	if err := s.quota.CanCreate(ctx, userID, role, req.Category); err != nil {
		return nil, err
	}
	limit, err := s.quota.Limit(ctx, userID, role, req.Category)
	if err != nil {
		return nil, err
	}

	rec, err := recordFromRequest(userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.listings.CreateWithinQuota(ctx, rec, limit); err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			// lost the race between check and commit
			return nil, &quota.LimitError{
				Err:      quota.ErrQuotaExceeded,
				Category: req.Category,
				Limit:    limit,
				Current:  limit,
			}
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"listing_id": rec.ID,
		"seller_id":  userID,
		"category":   req.Category,
	}).Info("listing created")

	return NormalizeListing(rec)
}

func recordFromRequest(sellerID int64, req CreateListingRequest) (*repository.ListingRecord, error) {
	rec := &repository.ListingRecord{
		Category:        string(req.Category),
		Title:           &req.Title,
		SellerID:        sellerID,
		UnitPrice:       &req.UnitPrice,
		DiscountPercent: &req.DiscountPercent,
		DeliveryCharge:  &req.DeliveryCharge,
	}

	if req.PerHourAddOns != nil {
		rec.PerHourAddOns = marshalColumn(req.PerHourAddOns)
	}
	if req.Schedule != nil {
		rec.Schedule = marshalColumn(req.Schedule)
	}
	if len(req.Photos) > 0 {
		rec.Photos = marshalColumn(req.Photos)
	}

	return rec, nil
}

func marshalColumn(v any) *string {
	raw, _ := json.Marshal(v)
	s := string(raw)
	return &s
}
