package goal

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest represents a goal creation request.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
}

// UpdateRequest represents a partial goal update.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}

// ListQuery represents query parameters for the goal list.
type ListQuery struct {
	Status     *Status    `form:"status"`
	CategoryID *uuid.UUID `form:"category_id"`
	Search     *string    `form:"search"`
}

// CategoryRequest represents an admin category create/update request.
type CategoryRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Slug      string `json:"slug" binding:"required,min=1,max=100"`
	Icon      string `json:"icon" binding:"max=100"`
	SortOrder int    `json:"sort_order"`
}
