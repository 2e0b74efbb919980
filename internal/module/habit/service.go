package habit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wishloop/server/internal/module/billing"
	"github.com/wishloop/server/internal/utils/pagination"
	"go.uber.org/zap"
)

// streakLookback bounds how many recent check-in days are loaded when
// computing streaks.
const streakLookback = 366

// Authorizer decides whether a user may create one more plan-limited
// resource. Implemented by the billing entitlement gate.
type Authorizer interface {
	AuthorizeCreate(ctx context.Context, userID uuid.UUID, kind billing.ResourceKind) error
}

// Service provides habit management operations.
type Service struct {
	repo       Repository
	authorizer Authorizer
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new habit service.
func NewService(repo Repository, authorizer Authorizer, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		logger:     logger,
		now:        time.Now,
	}
}

// Create creates a habit after the plan entitlement check passes.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*Habit, error) {
	if err := s.authorizer.AuthorizeCreate(ctx, userID, billing.ResourceHabits); err != nil {
		return nil, err
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = FrequencyDaily
	}
	if !frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	habit := &Habit{
		ID:          uuid.New(),
		UserID:      userID,
		GoalID:      req.GoalID,
		Title:       req.Title,
		Description: req.Description,
		Frequency:   frequency,
		Color:       req.Color,
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}

	s.logger.Info("habit created",
		zap.String("habit_id", habit.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return habit, nil
}

// Get returns a habit owned by the user.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Habit, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns the user's habits matching the filter.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter *Filter, page *pagination.Pagination) ([]*Habit, int64, error) {
	return s.repo.List(ctx, userID, filter, page)
}

// Update applies partial updates to a habit.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *UpdateRequest) (*Habit, error) {
	habit, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		habit.Title = *req.Title
	}
	if req.Description != nil {
		habit.Description = *req.Description
	}
	if req.GoalID != nil {
		habit.GoalID = req.GoalID
	}
	if req.Frequency != nil {
		if !req.Frequency.Valid() {
			return nil, ErrInvalidFrequency
		}
		habit.Frequency = *req.Frequency
	}
	if req.Color != nil {
		habit.Color = *req.Color
	}
	if req.IsArchived != nil {
		habit.IsArchived = *req.IsArchived
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return habit, nil
}

// Delete soft deletes a habit owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, userID, id)
}

// --- Check-ins ---

// CheckIn records a completion for the given day. Duplicate check-ins
// on the same calendar day are rejected.
func (s *Service) CheckIn(ctx context.Context, userID, habitID uuid.UUID, req *CheckInRequest) (*CheckIn, error) {
	if _, err := s.repo.GetByID(ctx, userID, habitID); err != nil {
		return nil, err
	}

	day := DayOf(s.now())
	if req.Day != nil {
		day = DayOf(*req.Day)
	}
	if day.After(DayOf(s.now())) {
		return nil, ErrFutureCheckIn
	}

	checkIn := &CheckIn{
		ID:      uuid.New(),
		HabitID: habitID,
		Day:     day,
		Note:    req.Note,
	}

	if err := s.repo.CreateCheckIn(ctx, checkIn); err != nil {
		return nil, err
	}
	return checkIn, nil
}

// UndoCheckIn removes a check-in for the given day.
func (s *Service) UndoCheckIn(ctx context.Context, userID, habitID uuid.UUID, day time.Time) error {
	if _, err := s.repo.GetByID(ctx, userID, habitID); err != nil {
		return err
	}
	return s.repo.DeleteCheckIn(ctx, habitID, day)
}

// History returns check-ins within [from, to].
func (s *Service) History(ctx context.Context, userID, habitID uuid.UUID, from, to time.Time) ([]*CheckIn, error) {
	if _, err := s.repo.GetByID(ctx, userID, habitID); err != nil {
		return nil, err
	}
	return s.repo.ListCheckIns(ctx, habitID, from, to)
}

// Stats returns streak statistics for a habit.
func (s *Service) Stats(ctx context.Context, userID, habitID uuid.UUID) (*StatsResponse, error) {
	if _, err := s.repo.GetByID(ctx, userID, habitID); err != nil {
		return nil, err
	}

	days, err := s.repo.RecentCheckInDays(ctx, habitID, streakLookback)
	if err != nil {
		return nil, fmt.Errorf("load check-in days: %w", err)
	}

	current, longest := computeStreaks(days, DayOf(s.now()))
	return &StatsResponse{
		HabitID:       habitID,
		TotalCheckIns: len(days),
		CurrentStreak: current,
		LongestStreak: longest,
	}, nil
}

// computeStreaks derives the current and longest run of consecutive
// days from check-in days sorted newest first. The current streak is
// intact if the newest check-in is today or yesterday.
func computeStreaks(days []time.Time, today time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		gap := DayOf(days[i-1]).Sub(DayOf(days[i])).Hours() / 24
		if gap == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	sinceLast := today.Sub(DayOf(days[0])).Hours() / 24
	if sinceLast > 1 {
		return 0, longest
	}

	current = 1
	for i := 1; i < len(days); i++ {
		gap := DayOf(days[i-1]).Sub(DayOf(days[i])).Hours() / 24
		if gap != 1 {
			break
		}
		current++
	}
	return current, longest
}
