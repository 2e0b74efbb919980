package addon

import (
	"time"

	"github.com/google/uuid"
)

// AddOn is a server-configured AI assistant. Its prompts and policy
// are owned by admins; users only supply their own prompt and count.
type AddOn struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Slug         string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"`
	Icon         string     `gorm:"type:varchar(100)" json:"icon"`
	Category     string     `gorm:"type:varchar(100)" json:"category"`
	IsEnabled    bool       `gorm:"not null;default:true" json:"is_enabled"`
	IsPremium    bool       `gorm:"not null;default:false" json:"is_premium"`
	RequiresAuth bool       `gorm:"not null;default:true" json:"requires_auth"`
	SystemPrompt *string    `gorm:"type:text" json:"system_prompt,omitempty"`
	CustomPrompt *string    `gorm:"type:text" json:"custom_prompt,omitempty"`
	DefaultCount int        `gorm:"not null;default:5" json:"default_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `gorm:"index" json:"-"`
}

// TableName returns the table name for the AddOn model.
func (AddOn) TableName() string {
	return "add_ons"
}
