package reporting

import "fmt"

// InterpretAccuracy returns a plain-language label for an accuracy percentage (0-100).
func InterpretAccuracy(pct float64) string {
	switch {
	case pct >= 98:
		return "Near-perfect (>=98%)"
	case pct >= 90:
		return "Excellent (90-98%)"
	case pct >= 75:
		return "Good (75-90%)"
	case pct >= 50:
		return "Needs Work (50-75%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretPassRate returns a human-readable explanation of a pass rate (0-1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All pairs reached the threshold (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most pairs reached the threshold (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the pairs reached the threshold (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few pairs reached the threshold (%.0f%%)", pct)
	}
}
