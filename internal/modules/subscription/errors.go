package subscription

import "errors"

var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAlreadySubscribed    = errors.New("already subscribed to this plan")
	ErrCannotCancelFree     = errors.New("cannot cancel free plan")
	ErrInvalidBillingPeriod = errors.New("invalid billing period")
	ErrNotSeller            = errors.New("only sellers can manage subscriptions")
)
