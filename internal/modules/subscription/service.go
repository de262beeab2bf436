package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"equiherds/internal/domain"
	"equiherds/internal/modules/quota"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service handles subscription business logic for sellers. Buyers are never
// assigned plans.
type Service struct {
	repo     Repository
	listings quota.ListingCounter
	log      *logrus.Logger
}

func NewService(repo Repository, listings quota.ListingCounter, log *logrus.Logger) *Service {
	return &Service{repo: repo, listings: listings, log: log}
}

// defaultFreePlan is the fallback when no free plan row is seeded.
func defaultFreePlan() *Plan {
	return &Plan{
		ID:             PlanFree,
		Name:           "Free",
		EquipmentLimit: "1",
		HorseLimit:     "1",
		ServiceLimit:   "1",
		StableLimit:    "Not Allowed",
		TrainerLimit:   "Not Allowed",
		IsActive:       true,
	}
}

// GetPlans returns all active plans (public, no auth required)
func (s *Service) GetPlans(ctx context.Context) ([]*Plan, error) {
	return s.repo.ListPlans(ctx)
}

// GetCurrentSubscription returns the seller's active subscription and plan.
// If no subscription exists, returns a virtual free-tier subscription.
func (s *Service) GetCurrentSubscription(ctx context.Context, sellerID int64) (*Subscription, *Plan, error) {
	sub, err := s.repo.GetActiveBySellerID(ctx, sellerID)
	if err != nil {
		return nil, nil, err
	}

	if sub == nil || sub.IsExpired() {
		freePlan, _ := s.repo.GetPlanByID(ctx, PlanFree)
		if freePlan == nil {
			freePlan = defaultFreePlan()
		}
		return &Subscription{
			SellerID:      sellerID,
			PlanID:        PlanFree,
			Status:        StatusActive,
			BillingPeriod: BillingMonthly,
			StartedAt:     time.Now(),
		}, freePlan, nil
	}

	plan, err := s.repo.GetPlanByID(ctx, sub.PlanID)
	if err != nil || plan == nil {
		plan = defaultFreePlan()
	}
	return sub, plan, nil
}

// ActivePlan feeds the quota evaluator: the seller's current limit tokens.
// Sellers without a subscription fall back to the seeded free plan; when no
// free plan row exists either, (nil, nil) signals "no active plan" and the
// evaluator denies.
func (s *Service) ActivePlan(ctx context.Context, userID int64) (*quota.PlanInfo, error) {
	sub, err := s.repo.GetActiveBySellerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	planID := PlanFree
	if sub != nil && !sub.IsExpired() {
		planID = sub.PlanID
	}
	plan, _ := s.repo.GetPlanByID(ctx, planID)
	if plan == nil {
		return nil, nil
	}
	return &quota.PlanInfo{Name: plan.Name, Limits: plan.LimitTokens()}, nil
}

// Subscribe creates or upgrades a seller's subscription, returning it with
// the plan it now carries.
func (s *Service) Subscribe(ctx context.Context, sellerID int64, role domain.UserRole, req *SubscribeRequest) (*Subscription, *Plan, error) {
	if role != domain.RoleSeller && role != domain.RoleAdmin {
		return nil, nil, ErrNotSeller
	}

	planID := PlanID(req.PlanID)
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil || plan == nil {
		return nil, nil, ErrPlanNotFound
	}

	existing, err := s.repo.GetActiveBySellerID(ctx, sellerID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil && !existing.IsExpired() && existing.PlanID == planID {
		return nil, nil, ErrAlreadySubscribed
	}

	period := BillingPeriod(req.BillingPeriod)
	var expiresAt time.Time
	switch period {
	case BillingMonthly:
		expiresAt = time.Now().AddDate(0, 1, 0)
	case BillingYearly:
		expiresAt = time.Now().AddDate(1, 0, 0)
	default:
		return nil, nil, ErrInvalidBillingPeriod
	}

	// switching plans retires the old subscription first
	if existing != nil {
		_ = s.repo.Cancel(ctx, existing.ID, fmt.Sprintf("switched to %s", planID))
	}

	now := time.Now()
	sub := &Subscription{
		ID:            uuid.New().String(),
		SellerID:      sellerID,
		PlanID:        planID,
		Status:        StatusActive,
		BillingPeriod: period,
		StartedAt:     now,
		ExpiresAt:     sql.NullTime{Time: expiresAt, Valid: true},
		AutoRenew:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"seller_id": sellerID,
		"plan_id":   planID,
		"period":    period,
	}).Info("subscription created")
	return sub, plan, nil
}

// Cancel cancels a seller's active subscription.
func (s *Service) Cancel(ctx context.Context, sellerID int64, reason string) error {
	sub, err := s.repo.GetActiveBySellerID(ctx, sellerID)
	if err != nil || sub == nil {
		return ErrSubscriptionNotFound
	}
	if sub.PlanID == PlanFree {
		return ErrCannotCancelFree
	}
	if err := s.repo.Cancel(ctx, sub.ID, reason); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"seller_id": sellerID, "plan_id": sub.PlanID}).Info("subscription cancelled")
	return nil
}

// GetUsage compares the seller's live listing counts with the plan caps.
func (s *Service) GetUsage(ctx context.Context, sellerID int64) (*UsageResponse, error) {
	_, plan, err := s.GetCurrentSubscription(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	usage := &UsageResponse{
		PlanID:     string(plan.ID),
		PlanName:   plan.Name,
		Categories: make(map[string]CategoryUsage, 5),
	}
	for cat, token := range plan.LimitTokens() {
		count, err := s.listings.CountBySellerAndCategory(ctx, sellerID, cat)
		if err != nil {
			return nil, err
		}
		usage.Categories[string(cat)] = CategoryUsage{
			LimitToken: token,
			Cap:        quota.ParseLimit(token),
			Current:    count,
		}
	}
	return usage, nil
}

// ExpireOldSubscriptions is called by a background sweep.
func (s *Service) ExpireOldSubscriptions(ctx context.Context) (int, error) {
	n, err := s.repo.ExpireOldSubscriptions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("expired stale subscriptions")
	}
	return n, nil
}
