package billing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"go.uber.org/zap"
)

// --- Mocks ---

type mockPlanRepo struct {
	mock.Mock
}

func (m *mockPlanRepo) GetByKey(ctx context.Context, key PlanKey) (*Plan, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *mockPlanRepo) ListActive(ctx context.Context) ([]*Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Plan), args.Error(1)
}

func (m *mockPlanRepo) ListAll(ctx context.Context) ([]*Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Plan), args.Error(1)
}

func (m *mockPlanRepo) Upsert(ctx context.Context, plan *Plan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *mockPlanRepo) UpsertLimits(ctx context.Context, limits *PlanLimit) error {
	return m.Called(ctx, limits).Error(0)
}

type mockSubRepo struct {
	mock.Mock
}

func (m *mockSubRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *mockSubRepo) GetByStripeSubscriptionID(ctx context.Context, stripeID string) (*Subscription, error) {
	args := m.Called(ctx, stripeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *mockSubRepo) Upsert(ctx context.Context, sub *Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *mockSubRepo) Update(ctx context.Context, sub *Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Helpers ---

func boundedAt(n int64) *int64 { return &n }

func planWithLimits(key PlanKey, maxGoals, maxHabits *int64) *Plan {
	planID := uuid.New()
	return &Plan{
		ID:   planID,
		Key:  key,
		Name: string(key),
		Limits: &PlanLimit{
			ID:        uuid.New(),
			PlanID:    planID,
			MaxGoals:  maxGoals,
			MaxHabits: maxHabits,
		},
	}
}

func newTestEntitlements(plans *mockPlanRepo, subs *mockSubRepo) *Entitlements {
	return NewEntitlements(plans, subs, nil, zap.NewNop())
}

// --- Tests ---

func TestAuthorizeCreate_AtLimitDenied(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)
	counter := new(mockCounter)

	subs.On("GetByUserID", ctx, userID).Return(&Subscription{
		UserID:  userID,
		PlanKey: PlanFree,
		Status:  SubscriptionActive,
	}, nil)
	plans.On("GetByKey", ctx, PlanFree).Return(planWithLimits(PlanFree, boundedAt(3), boundedAt(3)), nil)
	counter.On("CountByUser", ctx, userID).Return(int64(3), nil)

	e := newTestEntitlements(plans, subs)
	e.RegisterCounter(ResourceGoals, counter)

	err := e.AuthorizeCreate(ctx, userID, ResourceGoals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQuotaExceeded))
	assert.Equal(t, http.StatusPaymentRequired, apperrors.GetStatusCode(err))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "goals")
	assert.Contains(t, appErr.Message, "free")
}

func TestAuthorizeCreate_BelowLimitAllowed(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)
	counter := new(mockCounter)

	subs.On("GetByUserID", ctx, userID).Return(&Subscription{
		UserID:  userID,
		PlanKey: PlanFree,
		Status:  SubscriptionActive,
	}, nil)
	plans.On("GetByKey", ctx, PlanFree).Return(planWithLimits(PlanFree, boundedAt(3), boundedAt(3)), nil)
	counter.On("CountByUser", ctx, userID).Return(int64(2), nil)

	e := newTestEntitlements(plans, subs)
	e.RegisterCounter(ResourceGoals, counter)

	assert.NoError(t, e.AuthorizeCreate(ctx, userID, ResourceGoals))
}

func TestAuthorizeCreate_UnlimitedAlwaysAllows(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)
	counter := new(mockCounter)

	subs.On("GetByUserID", ctx, userID).Return(&Subscription{
		UserID:  userID,
		PlanKey: PlanPro,
		Status:  SubscriptionActive,
	}, nil)
	// NULL columns mean unlimited.
	plans.On("GetByKey", ctx, PlanPro).Return(planWithLimits(PlanPro, nil, nil), nil)

	e := newTestEntitlements(plans, subs)
	e.RegisterCounter(ResourceGoals, counter)

	assert.NoError(t, e.AuthorizeCreate(ctx, userID, ResourceGoals))

	// The counter must not be consulted on an unlimited plan, even for
	// users holding very large counts.
	counter.AssertNotCalled(t, "CountByUser", mock.Anything, mock.Anything)
}

func TestAuthorizeCreate_NoSubscriptionDefaultsToFree(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)
	counter := new(mockCounter)

	subs.On("GetByUserID", ctx, userID).Return(nil, ErrSubscriptionNotFound)
	plans.On("GetByKey", ctx, PlanFree).Return(planWithLimits(PlanFree, boundedAt(3), boundedAt(3)), nil)
	counter.On("CountByUser", ctx, userID).Return(int64(3), nil)

	e := newTestEntitlements(plans, subs)
	e.RegisterCounter(ResourceGoals, counter)

	err := e.AuthorizeCreate(ctx, userID, ResourceGoals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQuotaExceeded))

	plans.AssertCalled(t, "GetByKey", ctx, PlanFree)
}

func TestAuthorizeCreate_CanceledSubscriptionDefaultsToFree(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)
	counter := new(mockCounter)

	subs.On("GetByUserID", ctx, userID).Return(&Subscription{
		UserID:  userID,
		PlanKey: PlanPro,
		Status:  SubscriptionCanceled,
	}, nil)
	plans.On("GetByKey", ctx, PlanFree).Return(planWithLimits(PlanFree, boundedAt(3), boundedAt(3)), nil)
	counter.On("CountByUser", ctx, userID).Return(int64(0), nil)

	e := newTestEntitlements(plans, subs)
	e.RegisterCounter(ResourceGoals, counter)

	assert.NoError(t, e.AuthorizeCreate(ctx, userID, ResourceGoals))
	plans.AssertCalled(t, "GetByKey", ctx, PlanFree)
}

func TestAuthorizeCreate_UnknownPlanKeyIsConfigurationError(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)

	subs.On("GetByUserID", ctx, userID).Return(&Subscription{
		UserID:  userID,
		PlanKey: PlanKey("enterprise"),
		Status:  SubscriptionActive,
	}, nil)

	e := newTestEntitlements(plans, subs)

	err := e.AuthorizeCreate(ctx, userID, ResourceGoals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPlanMisconfigured))
	assert.False(t, errors.Is(err, apperrors.ErrQuotaExceeded))
	assert.Equal(t, http.StatusInternalServerError, apperrors.GetStatusCode(err))

	// No plan lookup happens for a key outside the known tiers.
	plans.AssertNotCalled(t, "GetByKey", mock.Anything, mock.Anything)
}

func TestAuthorizeCreate_MissingLimitRowIsConfigurationError(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)

	subs.On("GetByUserID", ctx, userID).Return(nil, ErrSubscriptionNotFound)

	plan := planWithLimits(PlanFree, boundedAt(3), boundedAt(3))
	plan.Limits = nil
	plans.On("GetByKey", ctx, PlanFree).Return(plan, nil)

	e := newTestEntitlements(plans, subs)

	err := e.AuthorizeCreate(ctx, userID, ResourceGoals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPlanMisconfigured))
	assert.False(t, errors.Is(err, apperrors.ErrQuotaExceeded))
}

func TestAuthorizeCreate_ResourceKindsIndependent(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	plans := new(mockPlanRepo)
	subs := new(mockSubRepo)
	goalCounter := new(mockCounter)
	habitCounter := new(mockCounter)

	subs.On("GetByUserID", ctx, userID).Return(nil, ErrSubscriptionNotFound)
	plans.On("GetByKey", ctx, PlanFree).Return(planWithLimits(PlanFree, boundedAt(3), boundedAt(3)), nil)

	// Goals are maxed out; habits have room.
	goalCounter.On("CountByUser", ctx, userID).Return(int64(3), nil)
	habitCounter.On("CountByUser", ctx, userID).Return(int64(1), nil)

	e := newTestEntitlements(plans, subs)
	e.RegisterCounter(ResourceGoals, goalCounter)
	e.RegisterCounter(ResourceHabits, habitCounter)

	err := e.AuthorizeCreate(ctx, userID, ResourceGoals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQuotaExceeded))

	assert.NoError(t, e.AuthorizeCreate(ctx, userID, ResourceHabits))
}

func TestLimitAllows(t *testing.T) {
	tests := []struct {
		name  string
		limit Limit
		count int64
		want  bool
	}{
		{"below bound", Bounded(3), 2, true},
		{"at bound", Bounded(3), 3, false},
		{"above bound", Bounded(3), 4, false},
		{"zero bound", Bounded(0), 0, false},
		{"unlimited small", Unlimited(), 0, true},
		{"unlimited large", Unlimited(), 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.limit.Allows(tt.count))
		})
	}
}

func TestLimitFor(t *testing.T) {
	t.Run("nil limits row", func(t *testing.T) {
		_, err := LimitFor(nil, ResourceGoals)
		assert.ErrorIs(t, err, ErrLimitsNotConfigured)
	})

	t.Run("null column means unlimited", func(t *testing.T) {
		limit, err := LimitFor(&PlanLimit{MaxGoals: nil, MaxHabits: boundedAt(5)}, ResourceGoals)
		require.NoError(t, err)
		assert.True(t, limit.IsUnlimited())
	})

	t.Run("bounded column", func(t *testing.T) {
		limit, err := LimitFor(&PlanLimit{MaxHabits: boundedAt(5)}, ResourceHabits)
		require.NoError(t, err)
		assert.False(t, limit.IsUnlimited())
		assert.Equal(t, int64(5), limit.Max())
	})

	t.Run("unknown resource kind", func(t *testing.T) {
		_, err := LimitFor(&PlanLimit{}, ResourceKind("projects"))
		assert.ErrorIs(t, err, ErrUnknownResource)
	})
}
