package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wishloop/server/internal/utils/pagination"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, user *User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, user *User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) List(ctx context.Context, filter *Filter, page *pagination.Pagination) ([]*User, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*User), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) CreateRefreshToken(ctx context.Context, token *RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (*RefreshToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RefreshToken), args.Error(1)
}

func (m *mockRepo) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func testJWT() *JWTManager {
	return NewJWTManager(&JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active user", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "new@example.com").Return(nil, ErrUserNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "new@example.com" &&
				u.Status == StatusActive &&
				u.PasswordHash != "correct-horse"
		})).Return(nil)

		svc := NewService(repo, testJWT(), zap.NewNop())

		u, err := svc.Register(ctx, &RegisterRequest{
			Email:    "new@example.com",
			Password: "correct-horse",
			Name:     "New User",
		})
		require.NoError(t, err)
		assert.Equal(t, "New User", u.Name)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "taken@example.com").Return(&User{Email: "taken@example.com"}, nil)

		svc := NewService(repo, testJWT(), zap.NewNop())

		_, err := svc.Register(ctx, &RegisterRequest{
			Email:    "taken@example.com",
			Password: "correct-horse",
			Name:     "Dup",
		})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("short password rejected", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "a@b.com").Return(nil, ErrUserNotFound)

		svc := NewService(repo, testJWT(), zap.NewNop())

		_, err := svc.Register(ctx, &RegisterRequest{
			Email:    "a@b.com",
			Password: "short",
			Name:     "A",
		})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	active := func(t *testing.T) *User {
		return &User{
			ID:           uuid.New(),
			Email:        "a@b.com",
			PasswordHash: hashPassword(t, "correct-horse"),
			Status:       StatusActive,
		}
	}

	t.Run("valid credentials issue token pair", func(t *testing.T) {
		u := active(t)
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "a@b.com").Return(u, nil)
		repo.On("CreateRefreshToken", ctx, mock.MatchedBy(func(rt *RefreshToken) bool {
			return rt.UserID == u.ID && rt.TokenHash != ""
		})).Return(nil)

		svc := NewService(repo, testJWT(), zap.NewNop())

		tokens, got, err := svc.Login(ctx, "a@b.com", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "a@b.com").Return(active(t), nil)

		svc := NewService(repo, testJWT(), zap.NewNop())

		_, _, err := svc.Login(ctx, "a@b.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like bad credentials", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "nobody@b.com").Return(nil, ErrUserNotFound)

		svc := NewService(repo, testJWT(), zap.NewNop())

		_, _, err := svc.Login(ctx, "nobody@b.com", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended account", func(t *testing.T) {
		u := active(t)
		u.Status = StatusSuspended

		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "a@b.com").Return(u, nil)

		svc := NewService(repo, testJWT(), zap.NewNop())

		_, _, err := svc.Login(ctx, "a@b.com", "correct-horse")
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	jwt := testJWT()
	userID := uuid.New()

	t.Run("rotates the refresh token", func(t *testing.T) {
		stored := &RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			TokenHash: jwt.HashRefreshToken("raw-token"),
			ExpiresAt: time.Now().Add(time.Hour),
		}

		repo := new(mockRepo)
		repo.On("GetRefreshTokenByHash", ctx, stored.TokenHash).Return(stored, nil)
		repo.On("GetByID", ctx, userID).Return(&User{ID: userID, Status: StatusActive}, nil)
		repo.On("RevokeRefreshToken", ctx, stored.ID).Return(nil)
		repo.On("CreateRefreshToken", ctx, mock.Anything).Return(nil)

		svc := NewService(repo, jwt, zap.NewNop())

		tokens, err := svc.Refresh(ctx, "raw-token")
		require.NoError(t, err)
		assert.NotEqual(t, "raw-token", tokens.RefreshToken)
		repo.AssertExpectations(t)
	})

	t.Run("revoked token rejected", func(t *testing.T) {
		now := time.Now()
		stored := &RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			TokenHash: jwt.HashRefreshToken("raw-token"),
			ExpiresAt: now.Add(time.Hour),
			RevokedAt: &now,
		}

		repo := new(mockRepo)
		repo.On("GetRefreshTokenByHash", ctx, stored.TokenHash).Return(stored, nil)

		svc := NewService(repo, jwt, zap.NewNop())

		_, err := svc.Refresh(ctx, "raw-token")
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		stored := &RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			TokenHash: jwt.HashRefreshToken("raw-token"),
			ExpiresAt: time.Now().Add(-time.Minute),
		}

		repo := new(mockRepo)
		repo.On("GetRefreshTokenByHash", ctx, stored.TokenHash).Return(stored, nil)

		svc := NewService(repo, jwt, zap.NewNop())

		_, err := svc.Refresh(ctx, "raw-token")
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestSuspend(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("suspends and revokes sessions", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", ctx, userID).Return(&User{ID: userID, Status: StatusActive}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Status == StatusSuspended && u.SuspendedAt != nil
		})).Return(nil)
		repo.On("RevokeUserRefreshTokens", ctx, userID).Return(nil)

		svc := NewService(repo, testJWT(), zap.NewNop())

		require.NoError(t, svc.Suspend(ctx, userID, "abuse"))
		repo.AssertExpectations(t)
	})

	t.Run("admins cannot be suspended", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByID", ctx, userID).Return(&User{ID: userID, IsAdmin: true}, nil)

		svc := NewService(repo, testJWT(), zap.NewNop())

		err := svc.Suspend(ctx, userID, "abuse")
		assert.ErrorIs(t, err, ErrCannotSuspendAdmin)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
