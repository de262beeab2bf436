package quota

import (
	"context"

	"equiherds/internal/domain"
)

// PlanInfo is the evaluator's view of a subscription plan: a name and one
// limit token per category. Tokens come from the subscription service as-is
// ("3", "unlimited", "Not Allowed", ...); parsing happens here.
type PlanInfo struct {
	Name   string
	Limits map[domain.Category]string
}

// PlanSource yields the user's active plan, or (nil, nil) when none exists.
type PlanSource interface {
	ActivePlan(ctx context.Context, userID int64) (*PlanInfo, error)
}

// ListingCounter counts a seller's live listings per category.
type ListingCounter interface {
	CountBySellerAndCategory(ctx context.Context, sellerID int64, category domain.Category) (int64, error)
}
