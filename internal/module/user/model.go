package user

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a user.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended" // Admin suspended
	StatusDeleted   Status = "deleted"   // Soft deleted
)

// IsValid checks if the status is a valid user status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusDeleted:
		return true
	default:
		return false
	}
}

// User represents a registered user.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`

	Status  Status `json:"status" gorm:"default:active"`
	IsAdmin bool   `json:"is_admin" gorm:"column:is_admin;default:false"`

	SuspendedAt   *time.Time `json:"suspended_at,omitempty" gorm:"column:suspended_at"`
	SuspendReason *string    `json:"suspend_reason,omitempty" gorm:"column:suspend_reason"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-" gorm:"column:deleted_at;index"` // Soft delete
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// CanLogin checks if the user is allowed to login.
func (u *User) CanLogin() bool {
	return u.Status == StatusActive
}

// RefreshToken represents a stored refresh token.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

// TableName returns the database table name.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsValid checks if the refresh token is usable.
func (t *RefreshToken) IsValid() bool {
	return t.RevokedAt == nil && time.Now().Before(t.ExpiresAt)
}
