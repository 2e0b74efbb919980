package billing

// ResourceKind names a countable, plan-limited resource.
type ResourceKind string

const (
	ResourceGoals  ResourceKind = "goals"
	ResourceHabits ResourceKind = "habits"
)

// Limit is the effective cap for one resource on one plan.
// The zero value is not meaningful; construct via Unlimited or Bounded.
type Limit struct {
	unlimited bool
	max       int64
}

// Unlimited returns a limit that never denies.
func Unlimited() Limit {
	return Limit{unlimited: true}
}

// Bounded returns a limit capped at max items.
func Bounded(max int64) Limit {
	return Limit{max: max}
}

// IsUnlimited reports whether the limit never denies.
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Max returns the cap. Only meaningful when IsUnlimited is false.
func (l Limit) Max() int64 {
	return l.max
}

// Allows reports whether a user currently holding count items may
// create one more. At-limit counts are denied.
func (l Limit) Allows(count int64) bool {
	if l.unlimited {
		return true
	}
	return count < l.max
}

// LimitFor resolves the effective limit for a resource kind from a
// plan's limit row. A NULL column maps to Unlimited.
func LimitFor(limits *PlanLimit, kind ResourceKind) (Limit, error) {
	if limits == nil {
		return Limit{}, ErrLimitsNotConfigured
	}

	var col *int64
	switch kind {
	case ResourceGoals:
		col = limits.MaxGoals
	case ResourceHabits:
		col = limits.MaxHabits
	default:
		return Limit{}, ErrUnknownResource
	}

	if col == nil {
		return Unlimited(), nil
	}
	return Bounded(*col), nil
}
