package orchestration

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ocracle/ocracle/internal/models"
)

// DefaultMaxConcurrency bounds in-flight model x image units across all models.
const DefaultMaxConcurrency = 5

// Recorder persists accepted results. It is called on the unit's goroutine.
type Recorder interface {
	Record(result *models.AttemptResult) error
}

// Outcome is the final state of one model x image unit.
type Outcome struct {
	Handle models.ModelHandle
	Task   models.ImageTask
	// Result is the accepted attempt, or the last scored one on a threshold miss.
	Result *models.AttemptResult
	Status models.Status
	Err    error
	// Recorded is true when Result was persisted.
	Recorded  bool
	RecordErr error
	Duration  time.Duration
}

// Scheduler fans model x image units out to the retry controller under one global bound.
type Scheduler struct {
	progress

	attempter      Attempter
	policy         RetryPolicy
	maxConcurrency int
	recorder       Recorder
	persistBest    bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithMaxConcurrency sets the global in-flight bound. Values below 1 use the default.
func WithMaxConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithRetryPolicy overrides the default attempts and threshold.
func WithRetryPolicy(p RetryPolicy) SchedulerOption {
	return func(s *Scheduler) {
		s.policy = p
	}
}

// WithRecorder persists accepted results as units finish.
func WithRecorder(r Recorder) SchedulerOption {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithPersistBestOnFailure also records the best attempt of pairs that never reach the threshold.
func WithPersistBestOnFailure(enabled bool) SchedulerOption {
	return func(s *Scheduler) {
		s.persistBest = enabled
	}
}

// NewScheduler creates a scheduler.
func NewScheduler(attempter Attempter, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		attempter:      attempter,
		policy:         DefaultRetryPolicy(),
		maxConcurrency: DefaultMaxConcurrency,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type unit struct {
	handle models.ModelHandle
	task   models.ImageTask
}

// RunAll dispatches every handle x task pair exactly once and streams outcomes
// in completion order. Once ctx is cancelled no further units start; units
// already running finish or fail, and the channel closes when all have drained.
func (s *Scheduler) RunAll(ctx context.Context, handles []models.ModelHandle, tasks []models.ImageTask) <-chan Outcome {
	units := make([]unit, 0, len(handles)*len(tasks))
	for _, h := range handles {
		for _, t := range tasks {
			units = append(units, unit{handle: h, task: t})
		}
	}

	out := make(chan Outcome, s.maxConcurrency)
	total := len(units)

	go func() {
		defer close(out)

		s.notify(ProgressEvent{EventType: EventBenchmarkStart, TotalUnits: total})

		var started atomic.Int64
		g := new(errgroup.Group)
		g.SetLimit(s.maxConcurrency)

		for _, u := range units {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				// admission may have waited on a slot past cancellation
				if ctx.Err() != nil {
					return nil
				}
				num := int(started.Add(1))
				out <- s.runUnit(ctx, u, num, total)
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			s.notify(ProgressEvent{EventType: EventBenchmarkStopped, UnitNum: int(started.Load()), TotalUnits: total, Err: ctx.Err()})
			return
		}
		s.notify(ProgressEvent{EventType: EventBenchmarkComplete, UnitNum: int(started.Load()), TotalUnits: total})
	}()

	return out
}

func (s *Scheduler) runUnit(ctx context.Context, u unit, num, total int) Outcome {
	s.notify(ProgressEvent{
		EventType:   EventUnitStart,
		Model:       u.handle.Key(),
		Image:       u.task.RelPath,
		UnitNum:     num,
		TotalUnits:  total,
		MaxAttempts: s.policy.MaxAttempts,
	})

	start := time.Now()
	result, err := RunWithRetry(ctx, s.attempter, u.handle, u.task, s.policy, func(e ProgressEvent) {
		e.UnitNum = num
		e.TotalUnits = total
		s.notify(e)
	})

	o := Outcome{Handle: u.handle, Task: u.task, Err: err}
	var toRecord *models.AttemptResult

	var qe *models.QualityThresholdError
	switch {
	case err == nil:
		o.Status = models.StatusPassed
		o.Result = &result
		toRecord = &result
	case errors.As(err, &qe):
		o.Status = models.StatusFailed
		o.Result = qe.Last
		if s.persistBest {
			toRecord = qe.Best
		}
	default:
		o.Status = models.StatusError
	}

	if toRecord != nil && s.recorder != nil {
		if rerr := s.recorder.Record(toRecord); rerr != nil {
			o.RecordErr = rerr
			s.notify(ProgressEvent{EventType: EventRecordError, Model: u.handle.Key(), Image: u.task.RelPath, UnitNum: num, TotalUnits: total, Err: rerr})
		} else {
			o.Recorded = true
		}
	}
	o.Duration = time.Since(start)

	ev := ProgressEvent{
		EventType:  EventUnitComplete,
		Model:      u.handle.Key(),
		Image:      u.task.RelPath,
		UnitNum:    num,
		TotalUnits: total,
		Status:     o.Status,
		Duration:   o.Duration,
		Threshold:  s.policy.Threshold,
		Err:        err,
	}
	if o.Result != nil {
		ev.Accuracy = o.Result.Accuracy
		ev.Attempt = o.Result.Attempt
	}
	s.notify(ev)

	return o
}
