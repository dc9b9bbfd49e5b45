package execution

import (
	"strings"
)

// TrimRule cleans provider-specific wrapper artifacts out of a response.
type TrimRule func(string) string

const (
	boxBegin = "<|begin_of_box|>"
	boxEnd   = "<|end_of_box|>"
)

// trimRules maps model ids to their response cleanup.
var trimRules = map[string]TrimRule{
	"z-ai/glm-4.5v":              stripBoxMarkers,
	"thudm/glm-4.1v-9b-thinking": stripBoxMarkers,
	"x-ai/grok-4":                collapseDuplicate,
	"grok-4":                     collapseDuplicate,
	"grok-4-0709":                collapseDuplicate,
}

// Trim whitespace-trims text and applies the model's rule, if any.
func Trim(modelID, text string) string {
	text = strings.TrimSpace(text)
	if rule, ok := trimRules[modelID]; ok {
		text = rule(text)
	}
	return text
}

func stripBoxMarkers(text string) string {
	text = strings.TrimPrefix(text, boxBegin)
	text = strings.TrimSuffix(text, boxEnd)
	return strings.TrimSpace(text)
}

// collapseDuplicate keeps one copy when the answer is the same text twice.
func collapseDuplicate(text string) string {
	runes := []rune(text)
	half := len(runes) / 2
	first, second := string(runes[:half]), string(runes[half:])
	if first == second {
		return strings.TrimSpace(first)
	}
	// a separator between the copies leaves an odd middle
	a, b := strings.TrimSpace(first), strings.TrimSpace(second)
	if a != "" && a == b {
		return a
	}
	return text
}
