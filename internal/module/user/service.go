package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wishloop/server/internal/utils/pagination"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair holds an access/refresh token pair.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Service provides user management operations.
type Service struct {
	repo   Repository
	jwt    *JWTManager
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, jwt *JWTManager, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		jwt:    jwt,
		logger: logger,
	}
}

// --- Registration & Login ---

// Register creates a new user with email and password.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil && err != ErrUserNotFound {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if len(req.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login authenticates a user and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	switch user.Status {
	case StatusSuspended:
		return nil, nil, ErrAccountSuspended
	case StatusDeleted:
		return nil, nil, ErrAccountDeleted
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
// The used refresh token is revoked (rotation).
func (s *Service) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	stored, err := s.repo.GetRefreshTokenByHash(ctx, s.jwt.HashRefreshToken(rawToken))
	if err != nil {
		return nil, err
	}

	if stored.RevokedAt != nil {
		return nil, ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	user, err := s.repo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, ErrAccountSuspended
	}

	if err := s.repo.RevokeRefreshToken(ctx, stored.ID); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes all refresh tokens for a user.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeUserRefreshTokens(ctx, userID)
}

func (s *Service) issueTokens(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	rawRefresh, refreshHash, refreshExpiry, err := s.jwt.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.repo.CreateRefreshToken(ctx, &RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: refreshExpiry,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// --- Profile ---

// GetByID returns a user by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile updates a user's profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword changes a user's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrIncorrectPassword
	}
	if len(next) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	// Force re-login everywhere
	return s.repo.RevokeUserRefreshTokens(ctx, userID)
}

// DeleteAccount soft deletes a user and revokes their sessions.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return s.repo.RevokeUserRefreshTokens(ctx, userID)
}

// --- Admin ---

// List returns users matching the filter.
func (s *Service) List(ctx context.Context, filter *Filter, page *pagination.Pagination) ([]*User, int64, error) {
	return s.repo.List(ctx, filter, page)
}

// Suspend suspends a user account.
func (s *Service) Suspend(ctx context.Context, userID uuid.UUID, reason string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return ErrCannotSuspendAdmin
	}

	now := time.Now()
	user.Status = StatusSuspended
	user.SuspendedAt = &now
	user.SuspendReason = &reason

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user suspended",
		zap.String("user_id", userID.String()),
		zap.String("reason", reason),
	)
	return s.repo.RevokeUserRefreshTokens(ctx, userID)
}

// Activate reactivates a suspended user account.
func (s *Service) Activate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.Status = StatusActive
	user.SuspendedAt = nil
	user.SuspendReason = nil

	return s.repo.Update(ctx, user)
}
