package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type mockStripe struct {
	mock.Mock
}

func (m *mockStripe) CreateCheckoutSession(priceID, planKey, customerEmail, clientReferenceID string) (*stripe.CheckoutSession, error) {
	args := m.Called(priceID, planKey, customerEmail, clientReferenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *mockStripe) VerifyWebhookSignature(payload []byte, sigHeader string) (stripe.Event, error) {
	args := m.Called(payload, sigHeader)
	return args.Get(0).(stripe.Event), args.Error(1)
}

func checkoutCompletedEvent(t *testing.T, userID uuid.UUID, planKey string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":                  "cs_test_1",
		"client_reference_id": userID.String(),
		"metadata":            map[string]string{"plan_key": planKey},
		"customer":            map[string]any{"id": "cus_1"},
		"subscription":        map[string]any{"id": "sub_1"},
	})
	require.NoError(t, err)
	return stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestSeedPlans(t *testing.T) {
	ctx := context.Background()
	allKeys := []PlanKey{PlanFree, PlanStandard, PlanPro}

	t.Run("first boot creates catalog with limits", func(t *testing.T) {
		plans := new(mockPlanRepo)
		for _, key := range allKeys {
			plans.On("GetByKey", ctx, key).Return(nil, ErrPlanNotFound)
		}
		plans.On("Upsert", ctx, mock.Anything).Return(nil).Times(3)
		plans.On("UpsertLimits", ctx, mock.MatchedBy(func(l *PlanLimit) bool {
			return l.PlanID != uuid.Nil
		})).Return(nil).Times(3)

		svc := NewService(plans, new(mockSubRepo), nil, new(mockStripe), zap.NewNop())

		require.NoError(t, svc.SeedPlans(ctx))
		plans.AssertExpectations(t)
	})

	t.Run("existing rows survive a restart", func(t *testing.T) {
		plans := new(mockPlanRepo)
		for _, key := range allKeys {
			plans.On("GetByKey", ctx, key).Return(&Plan{
				ID:          uuid.New(),
				Key:         key,
				PriceCents:  1299,
				StripePrice: "price_admin_entered",
				Limits:      &PlanLimit{MaxGoals: boundedAt(100)},
			}, nil)
		}

		svc := NewService(plans, new(mockSubRepo), nil, new(mockStripe), zap.NewNop())

		require.NoError(t, svc.SeedPlans(ctx))
		plans.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		plans.AssertNotCalled(t, "UpsertLimits", mock.Anything, mock.Anything)
	})
}

func TestGetSubscription_SyntheticFreeTier(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	subs := new(mockSubRepo)
	subs.On("GetByUserID", ctx, userID).Return(nil, ErrSubscriptionNotFound)

	svc := NewService(new(mockPlanRepo), subs, nil, nil, zap.NewNop())

	sub, err := svc.GetSubscription(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, PlanFree, sub.PlanKey)
	assert.Equal(t, SubscriptionActive, sub.Status)
}

func TestCreateCheckout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("free plan not purchasable", func(t *testing.T) {
		plans := new(mockPlanRepo)
		plans.On("GetByKey", ctx, PlanFree).Return(&Plan{
			Key:        PlanFree,
			PriceCents: 0,
		}, nil)

		svc := NewService(plans, new(mockSubRepo), nil, new(mockStripe), zap.NewNop())

		_, err := svc.CreateCheckout(ctx, userID, "a@b.com", PlanFree)
		assert.ErrorIs(t, err, ErrCheckoutUnavailable)
	})

	t.Run("paid plan returns hosted url", func(t *testing.T) {
		plans := new(mockPlanRepo)
		plans.On("GetByKey", ctx, PlanPro).Return(&Plan{
			Key:         PlanPro,
			PriceCents:  999,
			StripePrice: "price_pro",
		}, nil)

		stripeClient := new(mockStripe)
		stripeClient.On("CreateCheckoutSession", "price_pro", "pro", "a@b.com", userID.String()).
			Return(&stripe.CheckoutSession{
				ID:  "cs_test_1",
				URL: "https://checkout.stripe.com/pay/cs_test_1",
			}, nil)

		svc := NewService(plans, new(mockSubRepo), nil, stripeClient, zap.NewNop())

		url, err := svc.CreateCheckout(ctx, userID, "a@b.com", PlanPro)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", url)
	})
}

func TestHandleWebhookEvent(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("checkout completed activates subscription", func(t *testing.T) {
		subs := new(mockSubRepo)
		subs.On("Upsert", ctx, mock.MatchedBy(func(sub *Subscription) bool {
			return sub.UserID == userID &&
				sub.PlanKey == PlanPro &&
				sub.Status == SubscriptionActive &&
				sub.StripeSubscriptionID == "sub_1"
		})).Return(nil)

		svc := NewService(new(mockPlanRepo), subs, nil, new(mockStripe), zap.NewNop())

		err := svc.HandleWebhookEvent(ctx, checkoutCompletedEvent(t, userID, "pro"))
		require.NoError(t, err)
		subs.AssertExpectations(t)
	})

	t.Run("unknown plan key in metadata fails", func(t *testing.T) {
		subs := new(mockSubRepo)
		plans := new(mockPlanRepo)
		plans.On("ListActive", ctx).Return([]*Plan{}, nil)

		svc := NewService(plans, subs, nil, new(mockStripe), zap.NewNop())

		err := svc.HandleWebhookEvent(ctx, checkoutCompletedEvent(t, userID, "enterprise"))
		assert.Error(t, err)
		subs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("unknown event type ignored", func(t *testing.T) {
		svc := NewService(new(mockPlanRepo), new(mockSubRepo), nil, new(mockStripe), zap.NewNop())

		err := svc.HandleWebhookEvent(ctx, stripe.Event{Type: "invoice.created"})
		assert.NoError(t, err)
	})

	t.Run("failed invoice marks past due", func(t *testing.T) {
		raw, err := json.Marshal(map[string]any{
			"id":           "in_1",
			"subscription": map[string]any{"id": "sub_1"},
		})
		require.NoError(t, err)

		existing := &Subscription{
			ID:                   uuid.New(),
			UserID:               userID,
			PlanKey:              PlanPro,
			Status:               SubscriptionActive,
			StripeSubscriptionID: "sub_1",
		}

		subs := new(mockSubRepo)
		subs.On("GetByStripeSubscriptionID", ctx, "sub_1").Return(existing, nil)
		subs.On("Update", ctx, mock.MatchedBy(func(sub *Subscription) bool {
			return sub.Status == SubscriptionPastDue
		})).Return(nil)

		svc := NewService(new(mockPlanRepo), subs, nil, new(mockStripe), zap.NewNop())

		err = svc.HandleWebhookEvent(ctx, stripe.Event{
			Type: "invoice.payment_failed",
			Data: &stripe.EventData{Raw: raw},
		})
		require.NoError(t, err)
		subs.AssertExpectations(t)
	})

	t.Run("subscription deleted cancels", func(t *testing.T) {
		raw, err := json.Marshal(map[string]any{"id": "sub_1"})
		require.NoError(t, err)

		existing := &Subscription{
			ID:                   uuid.New(),
			UserID:               userID,
			PlanKey:              PlanPro,
			Status:               SubscriptionActive,
			StripeSubscriptionID: "sub_1",
		}

		subs := new(mockSubRepo)
		subs.On("GetByStripeSubscriptionID", ctx, "sub_1").Return(existing, nil)
		subs.On("Update", ctx, mock.MatchedBy(func(sub *Subscription) bool {
			return sub.Status == SubscriptionCanceled && sub.CanceledAt != nil
		})).Return(nil)

		svc := NewService(new(mockPlanRepo), subs, nil, new(mockStripe), zap.NewNop())

		err = svc.HandleWebhookEvent(ctx, stripe.Event{
			Type: "customer.subscription.deleted",
			Data: &stripe.EventData{Raw: raw},
		})
		require.NoError(t, err)
		subs.AssertExpectations(t)
	})
}
