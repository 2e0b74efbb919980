package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// Service provides plan, subscription and checkout operations.
type Service struct {
	plans        PlanRepository
	subs         SubscriptionRepository
	entitlements *Entitlements
	stripe       StripeClient
	logger       *zap.Logger
}

// NewService creates a new billing service.
func NewService(plans PlanRepository, subs SubscriptionRepository, entitlements *Entitlements, stripeClient StripeClient, logger *zap.Logger) *Service {
	return &Service{
		plans:        plans,
		subs:         subs,
		entitlements: entitlements,
		stripe:       stripeClient,
		logger:       logger,
	}
}

// --- Plans ---

// ListPlans returns all active plans ordered by price.
func (s *Service) ListPlans(ctx context.Context) ([]*Plan, error) {
	return s.plans.ListActive(ctx)
}

// GetPlan returns a single plan by key.
func (s *Service) GetPlan(ctx context.Context, key PlanKey) (*Plan, error) {
	return s.plans.GetByKey(ctx, key)
}

// ListAllPlans returns every plan, inactive ones included.
func (s *Service) ListAllPlans(ctx context.Context) ([]*Plan, error) {
	return s.plans.ListAll(ctx)
}

// UpdatePlan applies a partial update to a plan's catalog entry and,
// when limits are provided, replaces its resource caps.
func (s *Service) UpdatePlan(ctx context.Context, key PlanKey, req *UpdatePlanRequest) (*Plan, error) {
	plan, err := s.plans.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.PriceCents != nil {
		plan.PriceCents = *req.PriceCents
	}
	if req.StripePrice != nil {
		plan.StripePrice = *req.StripePrice
	}
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.plans.Upsert(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan %s: %w", key, err)
	}

	if req.Limits != nil {
		limits := &PlanLimit{
			ID:        uuid.New(),
			PlanID:    plan.ID,
			MaxGoals:  req.Limits.MaxGoals,
			MaxHabits: req.Limits.MaxHabits,
		}
		if err := s.plans.UpsertLimits(ctx, limits); err != nil {
			return nil, fmt.Errorf("update limits for %s: %w", key, err)
		}
		plan.Limits = limits
	}

	s.logger.Info("plan updated", zap.String("plan", string(key)))
	return plan, nil
}

// --- Subscription ---

// GetSubscription returns the user's subscription, or a synthetic free
// tier entry when no row exists.
func (s *Service) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if err == ErrSubscriptionNotFound {
			return &Subscription{
				UserID:  userID,
				PlanKey: DefaultPlan,
				Status:  SubscriptionActive,
			}, nil
		}
		return nil, err
	}
	return sub, nil
}

// UsageSnapshot returns the current usage against limits for every
// tracked resource kind.
func (s *Service) UsageSnapshot(ctx context.Context, userID uuid.UUID) (map[ResourceKind]ResourceUsage, error) {
	snapshot := make(map[ResourceKind]ResourceUsage)
	for _, kind := range []ResourceKind{ResourceGoals, ResourceHabits} {
		count, limit, err := s.entitlements.Usage(ctx, userID, kind)
		if err != nil {
			return nil, fmt.Errorf("usage for %s: %w", kind, err)
		}
		usage := ResourceUsage{Used: count, Unlimited: limit.IsUnlimited()}
		if !limit.IsUnlimited() {
			max := limit.Max()
			usage.Limit = &max
		}
		snapshot[kind] = usage
	}
	return snapshot, nil
}

// --- Checkout ---

// CreateCheckout starts a Stripe checkout session for a paid plan.
func (s *Service) CreateCheckout(ctx context.Context, userID uuid.UUID, email string, planKey PlanKey) (string, error) {
	plan, err := s.plans.GetByKey(ctx, planKey)
	if err != nil {
		return "", err
	}
	if plan.PriceCents == 0 || plan.StripePrice == "" {
		return "", ErrCheckoutUnavailable
	}

	sess, err := s.stripe.CreateCheckoutSession(plan.StripePrice, string(planKey), email, userID.String())
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.Info("checkout session created",
		zap.String("user_id", userID.String()),
		zap.String("plan", string(planKey)),
		zap.String("session_id", sess.ID),
	)
	return sess.URL, nil
}

// --- Webhooks ---

// HandleWebhookEvent applies a verified Stripe event to the local
// subscription state. Unknown event types are ignored.
func (s *Service) HandleWebhookEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.paid":
		return s.handleInvoice(ctx, event, SubscriptionActive)
	case "invoice.payment_failed":
		return s.handleInvoice(ctx, event, SubscriptionPastDue)
	default:
		s.logger.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	userID, err := uuid.Parse(sess.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("invalid client reference id %q: %w", sess.ClientReferenceID, err)
	}

	planKey, err := s.planKeyForPrice(ctx, sess)
	if err != nil {
		return err
	}

	sub := &Subscription{
		ID:      uuid.New(),
		UserID:  userID,
		PlanKey: planKey,
		Status:  SubscriptionActive,
	}
	if sess.Customer != nil {
		sub.StripeCustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		sub.StripeSubscriptionID = sess.Subscription.ID
	}

	if err := s.subs.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}

	s.logger.Info("subscription activated",
		zap.String("user_id", userID.String()),
		zap.String("plan", string(planKey)),
	)
	return nil
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	sub, err := s.subs.GetByStripeSubscriptionID(ctx, stripeSub.ID)
	if err != nil {
		if err == ErrSubscriptionNotFound {
			// Update for a subscription we never recorded. Checkout
			// completion will create the row.
			return nil
		}
		return err
	}

	switch stripeSub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		sub.Status = SubscriptionActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		sub.Status = SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled:
		sub.Status = SubscriptionCanceled
		now := time.Now()
		sub.CanceledAt = &now
	}

	if stripeSub.CurrentPeriodEnd > 0 {
		end := time.Unix(stripeSub.CurrentPeriodEnd, 0)
		sub.CurrentPeriodEnd = &end
	}

	return s.subs.Update(ctx, sub)
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	sub, err := s.subs.GetByStripeSubscriptionID(ctx, stripeSub.ID)
	if err != nil {
		if err == ErrSubscriptionNotFound {
			return nil
		}
		return err
	}

	now := time.Now()
	sub.Status = SubscriptionCanceled
	sub.CanceledAt = &now

	if err := s.subs.Update(ctx, sub); err != nil {
		return err
	}

	s.logger.Info("subscription canceled", zap.String("user_id", sub.UserID.String()))
	return nil
}

// handleInvoice moves the subscription tied to an invoice into the
// given status. Paid invoices restore active; failed payments mark the
// subscription past due until Stripe retries succeed or it cancels.
func (s *Service) handleInvoice(ctx context.Context, event stripe.Event, status SubscriptionStatus) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if inv.Subscription == nil {
		// One-off invoice with no subscription attached.
		return nil
	}

	sub, err := s.subs.GetByStripeSubscriptionID(ctx, inv.Subscription.ID)
	if err != nil {
		if err == ErrSubscriptionNotFound {
			return nil
		}
		return err
	}

	if sub.Status == SubscriptionCanceled || sub.Status == status {
		return nil
	}

	sub.Status = status
	if err := s.subs.Update(ctx, sub); err != nil {
		return err
	}

	s.logger.Info("subscription status updated from invoice",
		zap.String("user_id", sub.UserID.String()),
		zap.String("status", string(status)),
	)
	return nil
}

// planKeyForPrice maps the purchased Stripe price back to a plan key.
// Webhook payloads don't expand line items, so the session metadata
// set at creation is the primary source.
func (s *Service) planKeyForPrice(ctx context.Context, sess stripe.CheckoutSession) (PlanKey, error) {
	if key, ok := sess.Metadata["plan_key"]; ok {
		pk := PlanKey(key)
		if pk.Valid() {
			return pk, nil
		}
	}

	var priceID string
	if sess.LineItems != nil && len(sess.LineItems.Data) > 0 && sess.LineItems.Data[0].Price != nil {
		priceID = sess.LineItems.Data[0].Price.ID
	}
	if priceID != "" {
		plans, err := s.plans.ListActive(ctx)
		if err != nil {
			return "", err
		}
		for _, p := range plans {
			if p.StripePrice != "" && p.StripePrice == priceID {
				return p.Key, nil
			}
		}
	}

	return "", fmt.Errorf("checkout session %s maps to no known plan", sess.ID)
}

// --- Seeding ---

// SeedPlans inserts the built-in plan catalog on first boot. Plans
// that already exist are left untouched: their Stripe price IDs and
// any admin-edited prices or limits survive restarts.
func (s *Service) SeedPlans(ctx context.Context) error {
	bounded := func(n int64) *int64 { return &n }

	seeds := []struct {
		plan   Plan
		limits PlanLimit
	}{
		{
			plan: Plan{
				ID:          uuid.New(),
				Key:         PlanFree,
				Name:        "Free",
				Description: "Get started with goal and habit tracking",
				PriceCents:  0,
				Features: []string{
					"Up to 3 goals",
					"Up to 3 habits",
					"Daily check-ins",
				},
			},
			limits: PlanLimit{ID: uuid.New(), MaxGoals: bounded(3), MaxHabits: bounded(3)},
		},
		{
			plan: Plan{
				ID:          uuid.New(),
				Key:         PlanStandard,
				Name:        "Standard",
				Description: "More room to grow",
				PriceCents:  499,
				Features: []string{
					"Up to 25 goals",
					"Up to 25 habits",
					"AI idea generation",
				},
			},
			limits: PlanLimit{ID: uuid.New(), MaxGoals: bounded(25), MaxHabits: bounded(25)},
		},
		{
			plan: Plan{
				ID:          uuid.New(),
				Key:         PlanPro,
				Name:        "Pro",
				Description: "No limits, full AI toolkit",
				PriceCents:  999,
				Features: []string{
					"Unlimited goals",
					"Unlimited habits",
					"Premium AI assistants",
				},
			},
			limits: PlanLimit{ID: uuid.New()},
		},
	}

	created := 0
	for _, seed := range seeds {
		seed.plan.Currency = "usd"
		seed.plan.Interval = "month"
		seed.plan.IsActive = true

		// An existing row is admin-owned; never write over it.
		if _, err := s.plans.GetByKey(ctx, seed.plan.Key); err == nil {
			continue
		} else if err != ErrPlanNotFound {
			return fmt.Errorf("check plan %s: %w", seed.plan.Key, err)
		}

		if err := s.plans.Upsert(ctx, &seed.plan); err != nil {
			return fmt.Errorf("seed plan %s: %w", seed.plan.Key, err)
		}

		seed.limits.PlanID = seed.plan.ID
		if err := s.plans.UpsertLimits(ctx, &seed.limits); err != nil {
			return fmt.Errorf("seed limits for %s: %w", seed.plan.Key, err)
		}
		created++
	}

	if created > 0 {
		s.logger.Info("plan catalog seeded", zap.Int("plans", created))
	}
	return nil
}
