package addon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for add-on data access.
type Repository interface {
	Create(ctx context.Context, addOn *AddOn) error
	GetByID(ctx context.Context, id uuid.UUID) (*AddOn, error)
	GetBySlug(ctx context.Context, slug string) (*AddOn, error)
	Update(ctx context.Context, addOn *AddOn) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, enabledOnly bool) ([]*AddOn, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new add-on repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, addOn *AddOn) error {
	return r.db.WithContext(ctx).Create(addOn).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*AddOn, error) {
	var addOn AddOn
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&addOn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddOnNotFound
		}
		return nil, err
	}
	return &addOn, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*AddOn, error) {
	var addOn AddOn
	err := r.db.WithContext(ctx).
		Where("slug = ? AND deleted_at IS NULL", slug).
		First(&addOn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddOnNotFound
		}
		return nil, err
	}
	return &addOn, nil
}

func (r *repository) Update(ctx context.Context, addOn *AddOn) error {
	return r.db.WithContext(ctx).Save(addOn).Error
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&AddOn{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAddOnNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, enabledOnly bool) ([]*AddOn, error) {
	var addOns []*AddOn
	query := r.db.WithContext(ctx).Where("deleted_at IS NULL")
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	err := query.Order("category ASC, name ASC").Find(&addOns).Error
	return addOns, err
}
