package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"github.com/wishloop/server/internal/utils/metrics"
	"go.uber.org/zap"
)

// ResourceCounter reports how many live items of one resource kind a
// user currently owns. Goal and habit repositories implement this.
type ResourceCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Entitlements resolves a user's effective plan and authorizes
// resource creation against its limits.
type Entitlements struct {
	plans    PlanRepository
	subs     SubscriptionRepository
	counters map[ResourceKind]ResourceCounter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewEntitlements creates the entitlement gate.
func NewEntitlements(plans PlanRepository, subs SubscriptionRepository, m *metrics.Metrics, logger *zap.Logger) *Entitlements {
	return &Entitlements{
		plans:    plans,
		subs:     subs,
		counters: make(map[ResourceKind]ResourceCounter),
		metrics:  m,
		logger:   logger,
	}
}

// RegisterCounter wires the live counter for a resource kind. Called
// once per kind at startup.
func (e *Entitlements) RegisterCounter(kind ResourceKind, counter ResourceCounter) {
	e.counters[kind] = counter
}

// PlanKeyFor resolves the user's effective plan tier. Users without a
// subscription row, or with a canceled one, are on the free tier.
func (e *Entitlements) PlanKeyFor(ctx context.Context, userID uuid.UUID) (PlanKey, error) {
	sub, err := e.subs.GetByUserID(ctx, userID)
	if err != nil {
		if err == ErrSubscriptionNotFound {
			return DefaultPlan, nil
		}
		return "", fmt.Errorf("load subscription: %w", err)
	}

	if sub.Status == SubscriptionCanceled {
		return DefaultPlan, nil
	}
	return sub.PlanKey, nil
}

// AuthorizeCreate decides whether the user may create one more item of
// the given resource kind. A nil return authorizes the create. Denials
// surface as a 402 quota error; incomplete plan seed data surfaces as
// a 500 configuration error, never as a quota denial.
//
// The count check and the caller's subsequent insert are not atomic:
// two concurrent creates can both pass and land one row over the cap.
// The limit is soft.
func (e *Entitlements) AuthorizeCreate(ctx context.Context, userID uuid.UUID, kind ResourceKind) error {
	planKey, err := e.PlanKeyFor(ctx, userID)
	if err != nil {
		e.observe(kind, "error")
		return apperrors.Internal("failed to resolve plan", err)
	}

	limit, err := e.limitFor(ctx, planKey, kind)
	if err != nil {
		e.observe(kind, "misconfigured")
		e.logger.Error("plan limit lookup failed",
			zap.String("plan", string(planKey)),
			zap.String("resource", string(kind)),
			zap.Error(err),
		)
		return apperrors.PlanMisconfigured(
			fmt.Sprintf("limits for plan %q are not configured", planKey), err)
	}

	if limit.IsUnlimited() {
		e.observe(kind, "allowed")
		return nil
	}

	counter, ok := e.counters[kind]
	if !ok {
		e.observe(kind, "misconfigured")
		return apperrors.PlanMisconfigured(
			fmt.Sprintf("no usage counter for resource %q", kind), ErrNoCounter)
	}

	count, err := counter.CountByUser(ctx, userID)
	if err != nil {
		e.observe(kind, "error")
		return apperrors.Internal("failed to count usage", err)
	}

	if !limit.Allows(count) {
		e.observe(kind, "denied")
		return apperrors.QuotaExceeded(
			fmt.Sprintf("%s limit reached for the %s plan (%d of %d used)",
				kind, planKey, count, limit.Max()))
	}

	e.observe(kind, "allowed")
	return nil
}

// Usage returns the current count and effective limit for a resource.
func (e *Entitlements) Usage(ctx context.Context, userID uuid.UUID, kind ResourceKind) (int64, Limit, error) {
	planKey, err := e.PlanKeyFor(ctx, userID)
	if err != nil {
		return 0, Limit{}, err
	}

	limit, err := e.limitFor(ctx, planKey, kind)
	if err != nil {
		return 0, Limit{}, err
	}

	counter, ok := e.counters[kind]
	if !ok {
		return 0, Limit{}, ErrNoCounter
	}

	count, err := counter.CountByUser(ctx, userID)
	if err != nil {
		return 0, Limit{}, err
	}
	return count, limit, nil
}

func (e *Entitlements) limitFor(ctx context.Context, planKey PlanKey, kind ResourceKind) (Limit, error) {
	if !planKey.Valid() {
		return Limit{}, fmt.Errorf("%w: unknown plan key %q", ErrPlanNotFound, planKey)
	}

	plan, err := e.plans.GetByKey(ctx, planKey)
	if err != nil {
		return Limit{}, err
	}

	return LimitFor(plan.Limits, kind)
}

func (e *Entitlements) observe(kind ResourceKind, outcome string) {
	if e.metrics != nil {
		e.metrics.ObserveQuotaCheck(string(kind), outcome)
	}
}
