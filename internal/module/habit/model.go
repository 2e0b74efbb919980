package habit

import (
	"time"

	"github.com/google/uuid"
)

// Frequency represents how often a habit is meant to be performed.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// Habit represents a recurring practice the user tracks with check-ins.
type Habit struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	GoalID      *uuid.UUID `gorm:"type:uuid;index" json:"goal_id,omitempty"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Frequency   Frequency  `gorm:"type:varchar(16);not null;default:'daily'" json:"frequency"`
	Color       string     `gorm:"type:varchar(16)" json:"color"`
	IsArchived  bool       `gorm:"not null;default:false" json:"is_archived"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `gorm:"index" json:"-"`
}

// TableName returns the table name for the Habit model.
func (Habit) TableName() string {
	return "habits"
}

// CheckIn records one completion of a habit on a calendar day.
// At most one check-in exists per habit per day.
type CheckIn struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HabitID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_checkin_habit_day" json:"habit_id"`
	Day       time.Time `gorm:"type:date;not null;uniqueIndex:idx_checkin_habit_day" json:"day"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the CheckIn model.
func (CheckIn) TableName() string {
	return "habit_check_ins"
}

// DayOf truncates t to its calendar day in UTC. Check-in uniqueness
// and streaks work on these normalized days.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
