package habit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wishloop/server/internal/utils/pagination"
	"gorm.io/gorm"
)

// Filter holds habit list filters.
type Filter struct {
	GoalID   *uuid.UUID
	Archived *bool
}

// Repository defines the interface for habit data access.
type Repository interface {
	Create(ctx context.Context, habit *Habit) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Habit, error)
	Update(ctx context.Context, habit *Habit) error
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter *Filter, page *pagination.Pagination) ([]*Habit, int64, error)

	// CountByUser returns the number of live habits a user owns. Used
	// by the plan entitlement gate.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Check-in operations
	CreateCheckIn(ctx context.Context, checkIn *CheckIn) error
	DeleteCheckIn(ctx context.Context, habitID uuid.UUID, day time.Time) error
	ListCheckIns(ctx context.Context, habitID uuid.UUID, from, to time.Time) ([]*CheckIn, error)
	RecentCheckInDays(ctx context.Context, habitID uuid.UUID, limit int) ([]time.Time, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new habit repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, habit *Habit) error {
	return r.db.WithContext(ctx).Create(habit).Error
}

func (r *repository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Habit, error) {
	var habit Habit
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, userID).
		First(&habit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return &habit, nil
}

func (r *repository) Update(ctx context.Context, habit *Habit) error {
	return r.db.WithContext(ctx).Save(habit).Error
}

func (r *repository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&Habit{}).
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", id, userID).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, filter *Filter, page *pagination.Pagination) ([]*Habit, int64, error) {
	var habits []*Habit
	var total int64

	query := r.db.WithContext(ctx).
		Model(&Habit{}).
		Where("user_id = ? AND deleted_at IS NULL", userID)

	if filter != nil {
		if filter.GoalID != nil {
			query = query.Where("goal_id = ?", *filter.GoalID)
		}
		if filter.Archived != nil {
			query = query.Where("is_archived = ?", *filter.Archived)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page != nil {
		query = query.Offset(page.Offset()).Limit(page.Limit())
	}

	if err := query.Order("created_at DESC").Find(&habits).Error; err != nil {
		return nil, 0, err
	}

	return habits, total, nil
}

func (r *repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Habit{}).
		Where("user_id = ? AND deleted_at IS NULL AND is_archived = ?", userID, false).
		Count(&count).Error
	return count, err
}

// --- Check-ins ---

func (r *repository) CreateCheckIn(ctx context.Context, checkIn *CheckIn) error {
	err := r.db.WithContext(ctx).Create(checkIn).Error
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyCheckedIn
	}
	return err
}

func (r *repository) DeleteCheckIn(ctx context.Context, habitID uuid.UUID, day time.Time) error {
	result := r.db.WithContext(ctx).
		Where("habit_id = ? AND day = ?", habitID, DayOf(day)).
		Delete(&CheckIn{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCheckInNotFound
	}
	return nil
}

func (r *repository) ListCheckIns(ctx context.Context, habitID uuid.UUID, from, to time.Time) ([]*CheckIn, error) {
	var checkIns []*CheckIn
	err := r.db.WithContext(ctx).
		Where("habit_id = ? AND day >= ? AND day <= ?", habitID, DayOf(from), DayOf(to)).
		Order("day DESC").
		Find(&checkIns).Error
	return checkIns, err
}

func (r *repository) RecentCheckInDays(ctx context.Context, habitID uuid.UUID, limit int) ([]time.Time, error) {
	var days []time.Time
	err := r.db.WithContext(ctx).
		Model(&CheckIn{}).
		Where("habit_id = ?", habitID).
		Order("day DESC").
		Limit(limit).
		Pluck("day", &days).Error
	return days, err
}

// isUniqueViolation detects the postgres duplicate key error. The
// string check covers drivers that do not translate to gorm's error.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "23505")
}
