package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wishloop/server/internal/module/billing"
	"github.com/wishloop/server/internal/utils/pagination"
	"go.uber.org/zap"
)

// Authorizer decides whether a user may create one more plan-limited
// resource. Implemented by the billing entitlement gate.
type Authorizer interface {
	AuthorizeCreate(ctx context.Context, userID uuid.UUID, kind billing.ResourceKind) error
}

// Service provides goal management operations.
type Service struct {
	repo       Repository
	authorizer Authorizer
	logger     *zap.Logger
}

// NewService creates a new goal service.
func NewService(repo Repository, authorizer Authorizer, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Create creates a goal after the plan entitlement check passes.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*Goal, error) {
	if err := s.authorizer.AuthorizeCreate(ctx, userID, billing.ResourceGoals); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	goal := &Goal{
		ID:          uuid.New(),
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusActive,
		TargetDate:  req.TargetDate,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.logger.Info("goal created",
		zap.String("goal_id", goal.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return goal, nil
}

// Get returns a goal owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns the user's goals matching the filter.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter *Filter, page *pagination.Pagination) ([]*Goal, int64, error) {
	return s.repo.List(ctx, userID, filter, page)
}

// Update applies partial updates to a goal.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *UpdateRequest) (*Goal, error) {
	goal, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.CategoryID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		goal.CategoryID = req.CategoryID
	}
	if req.TargetDate != nil {
		goal.TargetDate = req.TargetDate
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		goal.Status = *req.Status
	}

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return goal, nil
}

// Complete marks a goal as completed.
func (s *Service) Complete(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	goal, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if goal.Status == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	now := time.Now()
	goal.Status = StatusCompleted
	goal.CompletedAt = &now

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("complete goal: %w", err)
	}

	s.logger.Info("goal completed", zap.String("goal_id", goal.ID.String()))
	return goal, nil
}

// Archive moves a goal out of the live set. Archived goals no longer
// count against the plan limit.
func (s *Service) Archive(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	goal, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	goal.Status = StatusArchived
	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("archive goal: %w", err)
	}
	return goal, nil
}

// Delete soft deletes a goal owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, userID, id)
}

// --- Categories ---

// ListCategories returns all goal categories.
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory creates a category. Admin only.
func (s *Service) CreateCategory(ctx context.Context, req *CategoryRequest) (*Category, error) {
	category := &Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// UpdateCategory updates a category. Admin only.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Slug = req.Slug
	category.Icon = req.Icon
	category.SortOrder = req.SortOrder

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// DeleteCategory deletes a category. Admin only.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetCategoryByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}
