package billing

import "errors"

var (
	// ErrPlanNotFound is returned when no plan row exists for a plan key.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrLimitsNotConfigured is returned when a plan has no limit row.
	ErrLimitsNotConfigured = errors.New("plan limits not configured")

	// ErrUnknownResource is returned for a resource kind the limit
	// schema does not know about.
	ErrUnknownResource = errors.New("unknown resource kind")

	// ErrSubscriptionNotFound is returned when a user has no subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNoCounter is returned when no counter has been registered for a
	// resource kind.
	ErrNoCounter = errors.New("no counter registered for resource")

	// ErrCheckoutUnavailable is returned when a plan cannot be purchased
	// through Stripe (no price configured, or the free tier).
	ErrCheckoutUnavailable = errors.New("plan is not purchasable")
)
