package addon

import (
	"fmt"
	"sort"
	"strings"
)

// minPromptLength is the minimum accepted user prompt length.
const minPromptLength = 3

// ComposedPrompt is the system/user instruction pair sent upstream.
type ComposedPrompt struct {
	System string
	User   string
}

// Compose builds the upstream prompt pair from the add-on's stored
// configuration and the caller's input.
//
// The system instruction is the add-on's systemPrompt when set,
// otherwise a generic fallback naming the add-on. A requested item
// count is stated literally so output cardinality follows the
// instruction; nothing enforces it mechanically after that.
//
// The user instruction is the caller's prompt, followed by any
// structured form fields as labeled lines, with the add-on's
// customPrompt appended as context when present.
func Compose(a *AddOn, prompt string, count int, fields map[string]string) ComposedPrompt {
	system := ""
	if a.SystemPrompt != nil && *a.SystemPrompt != "" {
		system = *a.SystemPrompt
	} else {
		system = fmt.Sprintf("You are %s, a helpful assistant generating creative ideas.", a.Name)
	}

	if count > 0 {
		system += fmt.Sprintf("\nAlways return exactly %d items.", count)
	}

	user := prompt
	if block := fieldLines(fields); block != "" {
		user += "\n\n" + block
	}
	if a.CustomPrompt != nil && *a.CustomPrompt != "" {
		user += "\n\nContext:\n" + *a.CustomPrompt
	}

	return ComposedPrompt{System: system, User: user}
}

// fieldLines renders structured form fields as "Label: value" lines in
// a stable order. Empty values are skipped.
func fieldLines(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if strings.TrimSpace(fields[k]) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+fields[k])
	}
	return strings.Join(lines, "\n")
}
