package quota

import (
	"context"
	"strconv"
	"strings"

	"equiherds/internal/domain"
)

// Unlimited is the parsed form of a plan limit with no cap.
const Unlimited int64 = -1

type Service struct {
	plans    PlanSource
	listings ListingCounter
}

func NewService(plans PlanSource, listings ListingCounter) *Service {
	return &Service{plans: plans, listings: listings}
}

// CanCreate decides whether the user may create another listing of the given
// category. Administrators bypass every limit. The check is a pure read;
// callers must pair it with ListingRepository.CreateWithinQuota so the final
// count comparison and the insert commit together.
func (s *Service) CanCreate(ctx context.Context, userID int64, role domain.UserRole, category domain.Category) error {
	if role == domain.RoleAdmin {
		return nil
	}
	if !domain.KnownCategory(category) {
		return ErrUnknownCategory
	}

	plan, err := s.plans.ActivePlan(ctx, userID)
	if err != nil {
		return err
	}
	if plan == nil {
		return &LimitError{Err: ErrNoActivePlan, Category: category}
	}

	limit := ParseLimit(plan.Limits[category])
	if limit == Unlimited {
		return nil
	}

	count, err := s.listings.CountBySellerAndCategory(ctx, userID, category)
	if err != nil {
		return err
	}
	if count >= limit {
		return &LimitError{
			Err:      ErrQuotaExceeded,
			Category: category,
			Current:  count,
			Limit:    limit,
			Plan:     plan.Name,
		}
	}
	return nil
}

// Limit resolves the user's parsed cap for a category, for usage reporting.
// Administrators and unlimited plans report Unlimited.
func (s *Service) Limit(ctx context.Context, userID int64, role domain.UserRole, category domain.Category) (int64, error) {
	if role == domain.RoleAdmin {
		return Unlimited, nil
	}
	plan, err := s.plans.ActivePlan(ctx, userID)
	if err != nil {
		return 0, err
	}
	if plan == nil {
		return 0, nil
	}
	return ParseLimit(plan.Limits[category]), nil
}

// ParseLimit turns a symbolic plan limit token into a numeric cap.
// "unlimited" lifts the cap; a parsable non-negative integer is taken as-is;
// everything else ("Not Allowed", empty, garbage, negatives) fails closed
// to zero.
func ParseLimit(token string) int64 {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, "unlimited") {
		return Unlimited
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
