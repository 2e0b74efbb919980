package addon

import "errors"

var (
	// ErrAddOnNotFound is returned when no add-on exists for an id.
	ErrAddOnNotFound = errors.New("add-on not found")

	// ErrAddOnDisabled is returned when the add-on exists but its
	// enablement flag is off.
	ErrAddOnDisabled = errors.New("add-on is disabled")

	// ErrPremiumRequired is returned when a free-tier user requests a
	// premium add-on.
	ErrPremiumRequired = errors.New("premium plan required")

	// ErrPromptTooShort is returned for prompts under the minimum length.
	ErrPromptTooShort = errors.New("prompt too short")

	// ErrInvalidCount is returned for an item count outside the allowed
	// range.
	ErrInvalidCount = errors.New("invalid item count")

	// ErrSlugAlreadyExists is returned when creating an add-on with a
	// taken slug.
	ErrSlugAlreadyExists = errors.New("slug already exists")
)
