package orchestration

import (
	"sync"
	"time"

	"github.com/ocracle/ocracle/internal/models"
)

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventBenchmarkStart    EventType = "benchmark_start"
	EventBenchmarkComplete EventType = "benchmark_complete"
	EventBenchmarkStopped  EventType = "benchmark_stopped"
	EventUnitStart         EventType = "unit_start"
	EventUnitComplete      EventType = "unit_complete"
	EventAttemptComplete   EventType = "attempt_complete"
	EventAttemptError      EventType = "attempt_error"
	EventRecordError       EventType = "record_error"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType   EventType
	Model       string
	Image       string
	UnitNum     int
	TotalUnits  int
	Attempt     int
	MaxAttempts int
	Accuracy    float64
	Threshold   float64
	Status      models.Status
	Duration    time.Duration
	Err         error
}

// progress fans events out to registered listeners.
type progress struct {
	mu        sync.Mutex
	listeners []ProgressListener
}

// OnProgress registers a progress listener
func (p *progress) OnProgress(listener ProgressListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, listener)
}

func (p *progress) notify(event ProgressEvent) {
	p.mu.Lock()
	listeners := make([]ProgressListener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}
