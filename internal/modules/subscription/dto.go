package subscription

// SubscribeRequest is sent by a seller to subscribe to a plan
type SubscribeRequest struct {
	PlanID        string `json:"plan_id" binding:"required"`
	BillingPeriod string `json:"billing_period" binding:"required,oneof=monthly yearly"`
}

// CancelRequest is sent by a seller to cancel their subscription
type CancelRequest struct {
	Reason string `json:"reason"`
}

// SubscriptionResponse is the public representation of an active subscription
type SubscriptionResponse struct {
	ID            string            `json:"id,omitempty"`
	PlanID        string            `json:"plan_id"`
	PlanName      string            `json:"plan_name"`
	Status        string            `json:"status"`
	BillingPeriod string            `json:"billing_period"`
	StartedAt     string            `json:"started_at"`
	ExpiresAt     *string           `json:"expires_at,omitempty"`
	DaysRemaining int               `json:"days_remaining"`
	AutoRenew     bool              `json:"auto_renew"`
	Limits        map[string]string `json:"limits"`
}

// CategoryUsage compares one category's live listing count to the plan cap.
type CategoryUsage struct {
	LimitToken string `json:"limit"`
	Cap        int64  `json:"cap"` // parsed: -1 unlimited, 0 not allowed
	Current    int64  `json:"current"`
}

// UsageResponse shows current usage vs plan limits for a seller
type UsageResponse struct {
	PlanID     string                   `json:"plan_id"`
	PlanName   string                   `json:"plan_name"`
	Categories map[string]CategoryUsage `json:"categories"`
}

func buildSubscriptionResponse(sub *Subscription, plan *Plan) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:            sub.ID,
		PlanID:        string(sub.PlanID),
		Status:        string(sub.Status),
		BillingPeriod: string(sub.BillingPeriod),
		StartedAt:     sub.StartedAt.Format("2006-01-02T15:04:05Z"),
		AutoRenew:     sub.AutoRenew,
		DaysRemaining: sub.DaysRemaining(),
	}
	if sub.ExpiresAt.Valid {
		s := sub.ExpiresAt.Time.Format("2006-01-02T15:04:05Z")
		resp.ExpiresAt = &s
	}
	if plan != nil {
		resp.PlanName = plan.Name
		resp.Limits = make(map[string]string, 5)
		for cat, token := range plan.LimitTokens() {
			resp.Limits[string(cat)] = token
		}
	}
	return resp
}
