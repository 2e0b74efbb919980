package habit

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest represents a habit creation request.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	GoalID      *uuid.UUID `json:"goal_id,omitempty"`
	Frequency   Frequency  `json:"frequency,omitempty"`
	Color       string     `json:"color" binding:"max=16"`
}

// UpdateRequest represents a partial habit update.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	GoalID      *uuid.UUID `json:"goal_id,omitempty"`
	Frequency   *Frequency `json:"frequency,omitempty"`
	Color       *string    `json:"color,omitempty" binding:"omitempty,max=16"`
	IsArchived  *bool      `json:"is_archived,omitempty"`
}

// ListQuery represents query parameters for the habit list.
type ListQuery struct {
	GoalID   *uuid.UUID `form:"goal_id"`
	Archived *bool      `form:"archived"`
}

// CheckInRequest represents a check-in request. Day defaults to today.
type CheckInRequest struct {
	Day  *time.Time `json:"day,omitempty"`
	Note string     `json:"note" binding:"max=500"`
}

// HistoryQuery represents query parameters for check-in history.
type HistoryQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// StatsResponse reports streak statistics for a habit.
type StatsResponse struct {
	HabitID       uuid.UUID `json:"habit_id"`
	TotalCheckIns int       `json:"total_check_ins"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
}
