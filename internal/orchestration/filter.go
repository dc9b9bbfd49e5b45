package orchestration

import (
	"fmt"
	"path"
	"strings"

	"github.com/ocracle/ocracle/internal/models"
)

// FilterModels keeps the handles matched by at least one glob pattern.
// A pattern is tried, case-insensitively, against the display name, the model
// id and "provider/id", so "anthropic/*" selects every Claude model.
// No patterns keeps everything.
func FilterModels(handles []models.ModelHandle, patterns []string) ([]models.ModelHandle, error) {
	if len(patterns) == 0 {
		return handles, nil
	}
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid model filter pattern %q: %w", p, err)
		}
	}

	var matched []models.ModelHandle
	for _, h := range handles {
		if matchesAny(h, patterns) {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

func matchesAny(h models.ModelHandle, patterns []string) bool {
	names := []string{h.DisplayName, h.ModelID, string(h.Provider) + "/" + h.ModelID}
	for _, p := range patterns {
		p = strings.ToLower(p)
		for _, n := range names {
			// patterns were validated above
			if ok, _ := path.Match(p, strings.ToLower(n)); ok {
				return true
			}
		}
	}
	return false
}
