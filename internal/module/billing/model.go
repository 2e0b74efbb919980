package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PlanKey identifies a subscription plan tier.
type PlanKey string

const (
	PlanFree     PlanKey = "free"
	PlanStandard PlanKey = "standard"
	PlanPro      PlanKey = "pro"
)

// DefaultPlan is the tier applied to users without a subscription row.
const DefaultPlan = PlanFree

// Valid reports whether k is a known plan tier.
func (k PlanKey) Valid() bool {
	switch k {
	case PlanFree, PlanStandard, PlanPro:
		return true
	}
	return false
}

// Plan represents a purchasable subscription plan.
type Plan struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Key         PlanKey        `gorm:"type:varchar(32);uniqueIndex;not null" json:"key"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"not null;default:0" json:"price_cents"`
	Currency    string         `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Interval    string         `gorm:"type:varchar(16);not null;default:'month'" json:"interval"`
	Features    pq.StringArray `gorm:"type:text[]" json:"features"`
	StripePrice string         `gorm:"type:varchar(100)" json:"-"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Limits *PlanLimit `gorm:"foreignKey:PlanID" json:"limits,omitempty"`
}

// TableName returns the table name for the Plan model.
func (Plan) TableName() string {
	return "plans"
}

// PlanLimit holds the per-resource creation caps for a plan.
// A NULL column means the resource is unlimited on that plan.
type PlanLimit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PlanID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"plan_id"`
	MaxGoals  *int64    `gorm:"column:max_goals" json:"max_goals"`
	MaxHabits *int64    `gorm:"column:max_habits" json:"max_habits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the PlanLimit model.
func (PlanLimit) TableName() string {
	return "plan_limits"
}

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription links a user to a plan.
type Subscription struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID               uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	PlanKey              PlanKey            `gorm:"type:varchar(32);not null" json:"plan_key"`
	Status               SubscriptionStatus `gorm:"type:varchar(32);not null;default:'active'" json:"status"`
	StripeCustomerID     string             `gorm:"type:varchar(100)" json:"-"`
	StripeSubscriptionID string             `gorm:"type:varchar(100)" json:"-"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end,omitempty"`
	CanceledAt           *time.Time         `json:"canceled_at,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// TableName returns the table name for the Subscription model.
func (Subscription) TableName() string {
	return "subscriptions"
}
