package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlanRepository defines the interface for plan data access.
type PlanRepository interface {
	GetByKey(ctx context.Context, key PlanKey) (*Plan, error)
	ListActive(ctx context.Context) ([]*Plan, error)
	ListAll(ctx context.Context) ([]*Plan, error)
	Upsert(ctx context.Context, plan *Plan) error
	UpsertLimits(ctx context.Context, limits *PlanLimit) error
}

// SubscriptionRepository defines the interface for subscription data access.
type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	GetByStripeSubscriptionID(ctx context.Context, stripeID string) (*Subscription, error)
	Upsert(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetByKey(ctx context.Context, key PlanKey) (*Plan, error) {
	var plan Plan
	err := r.db.WithContext(ctx).
		Preload("Limits").
		Where("key = ?", key).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListActive(ctx context.Context) ([]*Plan, error) {
	var plans []*Plan
	err := r.db.WithContext(ctx).
		Preload("Limits").
		Where("is_active = ?", true).
		Order("price_cents ASC").
		Find(&plans).Error
	return plans, err
}

func (r *planRepository) ListAll(ctx context.Context) ([]*Plan, error) {
	var plans []*Plan
	err := r.db.WithContext(ctx).
		Preload("Limits").
		Order("price_cents ASC").
		Find(&plans).Error
	return plans, err
}

func (r *planRepository) Upsert(ctx context.Context, plan *Plan) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "price_cents", "currency",
				"interval", "features", "stripe_price", "is_active", "updated_at",
			}),
		}).
		Create(plan).Error
}

func (r *planRepository) UpsertLimits(ctx context.Context, limits *PlanLimit) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"max_goals", "max_habits", "updated_at",
			}),
		}).
		Create(limits).Error
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	var sub Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, stripeID string) (*Subscription, error) {
	var sub Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *Subscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan_key", "status", "stripe_customer_id",
				"stripe_subscription_id", "current_period_end",
				"canceled_at", "updated_at",
			}),
		}).
		Create(sub).Error
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}
