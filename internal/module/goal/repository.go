package goal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wishloop/server/internal/utils/pagination"
	"gorm.io/gorm"
)

// Filter holds goal list filters.
type Filter struct {
	Status     *Status
	CategoryID *uuid.UUID
	Search     *string
}

// Repository defines the interface for goal data access.
type Repository interface {
	Create(ctx context.Context, goal *Goal) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Goal, error)
	Update(ctx context.Context, goal *Goal) error
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter *Filter, page *pagination.Pagination) ([]*Goal, int64, error)

	// CountByUser returns the number of live goals a user owns. Used by
	// the plan entitlement gate.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Category operations
	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new goal repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, goal *Goal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *repository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	var goal Goal
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, userID).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

func (r *repository) Update(ctx context.Context, goal *Goal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

func (r *repository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&Goal{}).
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, userID).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, filter *Filter, page *pagination.Pagination) ([]*Goal, int64, error) {
	var goals []*Goal
	var total int64

	query := r.db.WithContext(ctx).
		Model(&Goal{}).
		Where("user_id = ? AND deleted_at IS NULL", userID)

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.CategoryID != nil {
			query = query.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.Search != nil {
			query = query.Where("title ILIKE ?", "%"+*filter.Search+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page != nil {
		query = query.Offset(page.Offset()).Limit(page.Limit())
	}

	if err := query.Preload("Category").Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, 0, err
	}

	return goals, total, nil
}

func (r *repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Goal{}).
		Where("user_id = ? AND deleted_at IS NULL AND status != ?", userID, StatusArchived).
		Count(&count).Error
	return count, err
}

// --- Categories ---

func (r *repository) ListCategories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *repository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	var category Category
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) UpdateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Category{}, "id = ?", id).Error
}
