package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/orchestration"
)

// consoleProgress prints scheduler events. Listeners are called from unit
// goroutines, so writes are serialized.
type consoleProgress struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

func newConsoleProgress(w io.Writer, verbose bool) *consoleProgress {
	return &consoleProgress{w: w, verbose: verbose}
}

func (p *consoleProgress) listen(event orchestration.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.EventType {
	case orchestration.EventBenchmarkStart:
		fmt.Fprintf(p.w, "Starting benchmark with %d model x image pair(s)...\n\n", event.TotalUnits)
	case orchestration.EventUnitStart:
		if p.verbose {
			fmt.Fprintf(p.w, "[%d/%d] %s | %s\n", event.UnitNum, event.TotalUnits, event.Model, event.Image)
		}
	case orchestration.EventAttemptComplete:
		icon := "✓"
		if event.Accuracy < event.Threshold {
			icon = "↻"
		}
		fmt.Fprintf(p.w, "%s %s | %s | attempt %d/%d | accuracy %.2f%% | %s\n",
			icon, event.Model, event.Image, event.Attempt, event.MaxAttempts, event.Accuracy*100, formatDuration(event.Duration))
	case orchestration.EventAttemptError:
		fmt.Fprintf(p.w, "✗ %s | %s | attempt %d/%d | error: %v\n",
			event.Model, event.Image, event.Attempt, event.MaxAttempts, event.Err)
	case orchestration.EventRecordError:
		fmt.Fprintf(p.w, "✗ %s | %s | could not record result: %v\n", event.Model, event.Image, event.Err)
	case orchestration.EventUnitComplete:
		if event.Status != models.StatusPassed || p.verbose {
			fmt.Fprintf(p.w, "  [%d/%d] %s | %s: %s (%s)\n",
				event.UnitNum, event.TotalUnits, event.Model, event.Image, event.Status, formatDuration(event.Duration))
		}
	case orchestration.EventBenchmarkStopped:
		fmt.Fprintf(p.w, "\nInterrupted: %d of %d pair(s) started.\n", event.UnitNum, event.TotalUnits)
	case orchestration.EventBenchmarkComplete:
		fmt.Fprintf(p.w, "\nAll %d pair(s) finished.\n", event.TotalUnits)
	}
}

// formatDuration renders short durations with millisecond precision.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
