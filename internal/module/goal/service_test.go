package goal

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wishloop/server/internal/module/billing"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"github.com/wishloop/server/internal/utils/pagination"
	"go.uber.org/zap"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, goal *Goal) error {
	return m.Called(ctx, goal).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Goal), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, goal *Goal) error {
	return m.Called(ctx, goal).Error(0)
}

func (m *mockRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockRepo) List(ctx context.Context, userID uuid.UUID, filter *Filter, page *pagination.Pagination) ([]*Goal, int64, error) {
	args := m.Called(ctx, userID, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Goal), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *mockRepo) GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *mockRepo) CreateCategory(ctx context.Context, category *Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockRepo) UpdateCategory(ctx context.Context, category *Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) AuthorizeCreate(ctx context.Context, userID uuid.UUID, kind billing.ResourceKind) error {
	return m.Called(ctx, userID, kind).Error(0)
}

func TestCreate_DeniedByQuota(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	repo := new(mockRepo)
	auth := new(mockAuthorizer)
	auth.On("AuthorizeCreate", ctx, userID, billing.ResourceGoals).
		Return(apperrors.QuotaExceeded("goals limit reached"))

	svc := NewService(repo, auth, zap.NewNop())

	_, err := svc.Create(ctx, userID, &CreateRequest{Title: "Run a marathon"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQuotaExceeded))

	// Nothing is persisted when the gate denies.
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_Allowed(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	repo := new(mockRepo)
	auth := new(mockAuthorizer)
	auth.On("AuthorizeCreate", ctx, userID, billing.ResourceGoals).Return(nil)
	repo.On("Create", ctx, mock.AnythingOfType("*goal.Goal")).Return(nil)

	svc := NewService(repo, auth, zap.NewNop())

	goal, err := svc.Create(ctx, userID, &CreateRequest{
		Title:       "Run a marathon",
		Description: "Finish under five hours",
	})
	require.NoError(t, err)
	assert.Equal(t, userID, goal.UserID)
	assert.Equal(t, StatusActive, goal.Status)
	assert.Equal(t, "Run a marathon", goal.Title)
}

func TestCreate_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	categoryID := uuid.New()

	repo := new(mockRepo)
	auth := new(mockAuthorizer)
	auth.On("AuthorizeCreate", ctx, userID, billing.ResourceGoals).Return(nil)
	repo.On("GetCategoryByID", ctx, categoryID).Return(nil, ErrCategoryNotFound)

	svc := NewService(repo, auth, zap.NewNop())

	_, err := svc.Create(ctx, userID, &CreateRequest{
		Title:      "Learn piano",
		CategoryID: &categoryID,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	goalID := uuid.New()

	t.Run("marks completed", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", ctx, userID, goalID).Return(&Goal{
			ID:     goalID,
			UserID: userID,
			Status: StatusActive,
		}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*goal.Goal")).Return(nil)

		svc := NewService(repo, new(mockAuthorizer), zap.NewNop())

		goal, err := svc.Complete(ctx, userID, goalID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, goal.Status)
		assert.NotNil(t, goal.CompletedAt)
	})

	t.Run("already completed", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", ctx, userID, goalID).Return(&Goal{
			ID:     goalID,
			UserID: userID,
			Status: StatusCompleted,
		}, nil)

		svc := NewService(repo, new(mockAuthorizer), zap.NewNop())

		_, err := svc.Complete(ctx, userID, goalID)
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})
}

func TestUpdate_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	goalID := uuid.New()

	repo := new(mockRepo)
	repo.On("GetByID", ctx, userID, goalID).Return(&Goal{
		ID:     goalID,
		UserID: userID,
		Status: StatusActive,
	}, nil)

	svc := NewService(repo, new(mockAuthorizer), zap.NewNop())

	bad := Status("paused")
	_, err := svc.Update(ctx, userID, goalID, &UpdateRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
