package goal

import "errors"

var (
	// ErrGoalNotFound is returned when a goal does not exist or belongs
	// to another user.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrCategoryNotFound is returned for an unknown category.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrAlreadyCompleted is returned when completing a completed goal.
	ErrAlreadyCompleted = errors.New("goal already completed")

	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid goal status")
)
