package addon

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestCompose_FallbackSystemPrompt(t *testing.T) {
	addOn := &AddOn{Name: "BucketBot"}

	composed := Compose(addOn, "dream trips", 3, nil)

	assert.Contains(t, composed.System, "BucketBot")
	assert.Contains(t, composed.System, strconv.Itoa(3))
}

func TestCompose_NoCustomPrompt(t *testing.T) {
	addOn := &AddOn{
		Name:         "BucketBot",
		SystemPrompt: nil,
		CustomPrompt: nil,
		DefaultCount: 3,
	}

	composed := Compose(addOn, "dream trips", 5, nil)

	assert.Equal(t,
		"You are BucketBot, a helpful assistant generating creative ideas.\nAlways return exactly 5 items.",
		composed.System)
	assert.Equal(t, "dream trips", composed.User)
}

func TestCompose_CustomPromptAppendedAsContext(t *testing.T) {
	addOn := &AddOn{
		Name:         "BucketBot",
		CustomPrompt: strptr("Focus on budget trips"),
		DefaultCount: 3,
	}

	composed := Compose(addOn, "dream trips", 5, nil)

	assert.Equal(t, "dream trips\n\nContext:\nFocus on budget trips", composed.User)
}

func TestCompose_StoredSystemPromptWins(t *testing.T) {
	addOn := &AddOn{
		Name:         "BucketBot",
		SystemPrompt: strptr("You plan unforgettable adventures."),
	}

	composed := Compose(addOn, "dream trips", 2, nil)

	assert.Equal(t,
		"You plan unforgettable adventures.\nAlways return exactly 2 items.",
		composed.System)
}

func TestCompose_FieldsAppendedAsLabeledLines(t *testing.T) {
	addOn := &AddOn{
		Name:         "Budget Planner",
		CustomPrompt: strptr("Stay realistic"),
	}

	composed := Compose(addOn, "plan a trip", 0, map[string]string{
		"Budget":   "2000 USD",
		"Duration": "10 days",
		"Notes":    "",
	})

	assert.Equal(t,
		"plan a trip\n\nBudget: 2000 USD\nDuration: 10 days\n\nContext:\nStay realistic",
		composed.User)
}

func TestCompose_NoCountSuffixWhenZero(t *testing.T) {
	addOn := &AddOn{Name: "BucketBot"}

	composed := Compose(addOn, "dream trips", 0, nil)

	assert.Equal(t,
		"You are BucketBot, a helpful assistant generating creative ideas.",
		composed.System)
}
