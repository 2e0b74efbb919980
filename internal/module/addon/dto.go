package addon

import "github.com/google/uuid"

// GenerateRequest represents a generation request against an add-on.
type GenerateRequest struct {
	ID     uuid.UUID         `json:"id" binding:"required"`
	Prompt string            `json:"prompt" binding:"required"`
	Count  int               `json:"count,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// CreateRequest represents an admin add-on creation request.
type CreateRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=100"`
	Slug         string  `json:"slug" binding:"required,min=1,max=100"`
	Description  string  `json:"description" binding:"max=2000"`
	Icon         string  `json:"icon" binding:"max=100"`
	Category     string  `json:"category" binding:"max=100"`
	IsEnabled    *bool   `json:"is_enabled,omitempty"`
	IsPremium    bool    `json:"is_premium"`
	RequiresAuth *bool   `json:"requires_auth,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
	CustomPrompt *string `json:"custom_prompt,omitempty"`
	DefaultCount int     `json:"default_count" binding:"omitempty,min=1,max=20"`
}

// UpdateRequest represents a partial admin add-on update.
type UpdateRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Description  *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Icon         *string `json:"icon,omitempty" binding:"omitempty,max=100"`
	Category     *string `json:"category,omitempty" binding:"omitempty,max=100"`
	IsEnabled    *bool   `json:"is_enabled,omitempty"`
	IsPremium    *bool   `json:"is_premium,omitempty"`
	RequiresAuth *bool   `json:"requires_auth,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
	CustomPrompt *string `json:"custom_prompt,omitempty"`
	DefaultCount *int    `json:"default_count,omitempty" binding:"omitempty,min=1,max=20"`
}
