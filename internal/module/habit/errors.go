package habit

import "errors"

var (
	// ErrHabitNotFound is returned when a habit does not exist or
	// belongs to another user.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrAlreadyCheckedIn is returned for a duplicate check-in on the
	// same calendar day.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrCheckInNotFound is returned when undoing a check-in that does
	// not exist.
	ErrCheckInNotFound = errors.New("check-in not found")

	// ErrFutureCheckIn is returned for a check-in dated in the future.
	ErrFutureCheckIn = errors.New("cannot check in for a future day")

	// ErrInvalidFrequency is returned for an unknown frequency value.
	ErrInvalidFrequency = errors.New("invalid habit frequency")
)
