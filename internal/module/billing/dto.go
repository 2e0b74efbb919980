package billing

// ResourceUsage reports a user's current consumption for one resource.
type ResourceUsage struct {
	Used      int64  `json:"used"`
	Limit     *int64 `json:"limit,omitempty"`
	Unlimited bool   `json:"unlimited"`
}

// CheckoutRequest represents a request to purchase a plan.
type CheckoutRequest struct {
	PlanKey PlanKey `json:"plan_key" binding:"required"`
}

// CheckoutResponse carries the Stripe-hosted checkout URL.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// SubscriptionResponse represents the caller's subscription with usage.
type SubscriptionResponse struct {
	Subscription *Subscription                  `json:"subscription"`
	Usage        map[ResourceKind]ResourceUsage `json:"usage"`
}

// PlanLimitUpdate replaces a plan's resource caps. A nil value means
// unlimited for that resource.
type PlanLimitUpdate struct {
	MaxGoals  *int64 `json:"max_goals" binding:"omitempty,min=0"`
	MaxHabits *int64 `json:"max_habits" binding:"omitempty,min=0"`
}

// UpdatePlanRequest represents a partial admin plan update. When Limits
// is present it replaces both caps.
type UpdatePlanRequest struct {
	Name        *string          `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=2000"`
	PriceCents  *int64           `json:"price_cents,omitempty" binding:"omitempty,min=0"`
	StripePrice *string          `json:"stripe_price,omitempty" binding:"omitempty,max=100"`
	Features    []string         `json:"features,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Limits      *PlanLimitUpdate `json:"limits,omitempty"`
}
