package addon

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wishloop/server/internal/module/addon/provider"
	"github.com/wishloop/server/internal/module/billing"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"go.uber.org/zap"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, addOn *AddOn) error {
	return m.Called(ctx, addOn).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*AddOn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AddOn), args.Error(1)
}

func (m *mockRepo) GetBySlug(ctx context.Context, slug string) (*AddOn, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AddOn), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, addOn *AddOn) error {
	return m.Called(ctx, addOn).Error(0)
}

func (m *mockRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) List(ctx context.Context, enabledOnly bool) ([]*AddOn, error) {
	args := m.Called(ctx, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*AddOn), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req provider.Request) (<-chan provider.Chunk, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan provider.Chunk), args.Error(1)
}

type mockPlanSource struct {
	mock.Mock
}

func (m *mockPlanSource) PlanKeyFor(ctx context.Context, userID uuid.UUID) (billing.PlanKey, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(billing.PlanKey), args.Error(1)
}

func closedChunks(contents ...string) <-chan provider.Chunk {
	ch := make(chan provider.Chunk, len(contents))
	for _, c := range contents {
		ch <- provider.Chunk{Content: c}
	}
	close(ch)
	return ch
}

func newTestService(repo *mockRepo, gen *mockGenerator, plans *mockPlanSource) *Service {
	return NewService(repo, gen, plans, 20, zap.NewNop())
}

func TestGenerateStream_DisabledShortCircuits(t *testing.T) {
	ctx := context.Background()
	addOnID := uuid.New()

	repo := new(mockRepo)
	gen := new(mockGenerator)

	repo.On("GetByID", ctx, addOnID).Return(&AddOn{
		ID:        addOnID,
		Name:      "BucketBot",
		Slug:      "bucket-bot",
		IsEnabled: false,
	}, nil)

	svc := newTestService(repo, gen, new(mockPlanSource))

	_, err := svc.GenerateStream(ctx, uuid.New(), &GenerateRequest{
		ID:     addOnID,
		Prompt: "dream trips",
	})
	assert.ErrorIs(t, err, ErrAddOnDisabled)

	// The model client must never be invoked for a disabled add-on.
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateStream_NotFound(t *testing.T) {
	ctx := context.Background()
	addOnID := uuid.New()

	repo := new(mockRepo)
	gen := new(mockGenerator)
	repo.On("GetByID", ctx, addOnID).Return(nil, ErrAddOnNotFound)

	svc := newTestService(repo, gen, new(mockPlanSource))

	_, err := svc.GenerateStream(ctx, uuid.New(), &GenerateRequest{
		ID:     addOnID,
		Prompt: "dream trips",
	})
	assert.ErrorIs(t, err, ErrAddOnNotFound)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateStream_ValidationBeforeLookup(t *testing.T) {
	ctx := context.Background()

	repo := new(mockRepo)
	gen := new(mockGenerator)
	svc := newTestService(repo, gen, new(mockPlanSource))

	t.Run("prompt too short", func(t *testing.T) {
		_, err := svc.GenerateStream(ctx, uuid.New(), &GenerateRequest{
			ID:     uuid.New(),
			Prompt: "hi",
		})
		assert.ErrorIs(t, err, ErrPromptTooShort)
	})

	t.Run("count above maximum", func(t *testing.T) {
		_, err := svc.GenerateStream(ctx, uuid.New(), &GenerateRequest{
			ID:     uuid.New(),
			Prompt: "dream trips",
			Count:  21,
		})
		assert.ErrorIs(t, err, ErrInvalidCount)
	})

	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateStream_ComposedPromptPassedUpstream(t *testing.T) {
	ctx := context.Background()
	addOnID := uuid.New()
	userID := uuid.New()

	repo := new(mockRepo)
	gen := new(mockGenerator)

	repo.On("GetByID", ctx, addOnID).Return(&AddOn{
		ID:           addOnID,
		Name:         "BucketBot",
		Slug:         "bucket-bot",
		IsEnabled:    true,
		RequiresAuth: true,
		DefaultCount: 3,
	}, nil)

	gen.On("Generate", ctx, provider.Request{
		System: "You are BucketBot, a helpful assistant generating creative ideas.\nAlways return exactly 5 items.",
		User:   "dream trips",
		Count:  5,
	}).Return(closedChunks("- Patagonia"), nil)

	svc := newTestService(repo, gen, new(mockPlanSource))

	stream, err := svc.GenerateStream(ctx, userID, &GenerateRequest{
		ID:     addOnID,
		Prompt: "dream trips",
		Count:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "bucket-bot", stream.AddOn.Slug)
	gen.AssertExpectations(t)
}

func TestGenerateStream_CustomPromptAppended(t *testing.T) {
	ctx := context.Background()
	addOnID := uuid.New()

	repo := new(mockRepo)
	gen := new(mockGenerator)

	repo.On("GetByID", ctx, addOnID).Return(&AddOn{
		ID:           addOnID,
		Name:         "BucketBot",
		Slug:         "bucket-bot",
		IsEnabled:    true,
		RequiresAuth: false,
		CustomPrompt: strptr("Focus on budget trips"),
		DefaultCount: 3,
	}, nil)

	gen.On("Generate", ctx, provider.Request{
		System: "You are BucketBot, a helpful assistant generating creative ideas.\nAlways return exactly 5 items.",
		User:   "dream trips\n\nContext:\nFocus on budget trips",
		Count:  5,
	}).Return(closedChunks(), nil)

	svc := newTestService(repo, gen, new(mockPlanSource))

	_, err := svc.GenerateStream(ctx, uuid.Nil, &GenerateRequest{
		ID:     addOnID,
		Prompt: "dream trips",
		Count:  5,
	})
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestGenerateStream_DefaultCountWhenUnset(t *testing.T) {
	ctx := context.Background()
	addOnID := uuid.New()

	repo := new(mockRepo)
	gen := new(mockGenerator)

	repo.On("GetByID", ctx, addOnID).Return(&AddOn{
		ID:           addOnID,
		Name:         "BucketBot",
		Slug:         "bucket-bot",
		IsEnabled:    true,
		RequiresAuth: false,
		DefaultCount: 3,
	}, nil)

	gen.On("Generate", ctx, mock.MatchedBy(func(req provider.Request) bool {
		return req.Count == 3
	})).Return(closedChunks(), nil)

	svc := newTestService(repo, gen, new(mockPlanSource))

	_, err := svc.GenerateStream(ctx, uuid.Nil, &GenerateRequest{
		ID:     addOnID,
		Prompt: "dream trips",
	})
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestGenerateStream_AuthPolicy(t *testing.T) {
	ctx := context.Background()
	addOnID := uuid.New()

	repo := new(mockRepo)
	gen := new(mockGenerator)
	repo.On("GetByID", ctx, addOnID).Return(&AddOn{
		ID:           addOnID,
		Name:         "BucketBot",
		Slug:         "bucket-bot",
		IsEnabled:    true,
		RequiresAuth: true,
		DefaultCount: 3,
	}, nil)

	svc := newTestService(repo, gen, new(mockPlanSource))

	_, err := svc.GenerateStream(ctx, uuid.Nil, &GenerateRequest{
		ID:     addOnID,
		Prompt: "dream trips",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateStream_PremiumPolicy(t *testing.T) {
	ctx := context.Background()
	addOnID := uuid.New()
	userID := uuid.New()

	premium := &AddOn{
		ID:           addOnID,
		Name:         "LifeCoach",
		Slug:         "life-coach",
		IsEnabled:    true,
		IsPremium:    true,
		RequiresAuth: true,
		DefaultCount: 3,
	}

	t.Run("free plan denied", func(t *testing.T) {
		repo := new(mockRepo)
		gen := new(mockGenerator)
		plans := new(mockPlanSource)

		repo.On("GetByID", ctx, addOnID).Return(premium, nil)
		plans.On("PlanKeyFor", ctx, userID).Return(billing.PlanFree, nil)

		svc := newTestService(repo, gen, plans)

		_, err := svc.GenerateStream(ctx, userID, &GenerateRequest{
			ID:     addOnID,
			Prompt: "help me focus",
		})
		assert.ErrorIs(t, err, ErrPremiumRequired)
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("paid plan allowed", func(t *testing.T) {
		repo := new(mockRepo)
		gen := new(mockGenerator)
		plans := new(mockPlanSource)

		repo.On("GetByID", ctx, addOnID).Return(premium, nil)
		plans.On("PlanKeyFor", ctx, userID).Return(billing.PlanPro, nil)
		gen.On("Generate", ctx, mock.Anything).Return(closedChunks(), nil)

		svc := newTestService(repo, gen, plans)

		_, err := svc.GenerateStream(ctx, userID, &GenerateRequest{
			ID:     addOnID,
			Prompt: "help me focus",
		})
		require.NoError(t, err)
	})
}
