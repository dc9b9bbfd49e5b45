package orchestration

import (
	"context"
	"errors"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/utils"
)

const (
	DefaultMaxAttempts = 5
	DefaultThreshold   = 0.75
)

// RetryPolicy bounds the attempts spent on one model x image pair.
type RetryPolicy struct {
	MaxAttempts int
	// Threshold is the accuracy fraction an attempt must reach to be accepted.
	Threshold float64
}

// DefaultRetryPolicy returns five attempts at a 0.75 threshold.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Threshold: DefaultThreshold}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return p
}

// RunWithRetry attempts a pair until one attempt reaches the threshold or the
// attempts run out. There is no backoff between attempts.
//
// Exhausting the attempts on low accuracy yields a *models.QualityThresholdError
// carrying the last and the best result. When the final attempt failed with an
// error, that error is returned. A cancelled context stops the loop at once.
func RunWithRetry(ctx context.Context, a Attempter, handle models.ModelHandle, task models.ImageTask, policy RetryPolicy, notify ProgressListener) (models.AttemptResult, error) {
	policy = policy.normalized()
	if notify == nil {
		notify = func(ProgressEvent) {}
	}

	var last, best *models.AttemptResult
	var lastErr error

	for n := 1; n <= policy.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return models.AttemptResult{}, err
		}

		result, err := a.Attempt(ctx, handle, task, n)
		if err != nil {
			if ctx.Err() != nil {
				return models.AttemptResult{}, ctx.Err()
			}
			if !retryable(err) {
				return models.AttemptResult{}, err
			}
			lastErr = err
			notify(ProgressEvent{
				EventType:   EventAttemptError,
				Model:       handle.Key(),
				Image:       task.RelPath,
				Attempt:     n,
				MaxAttempts: policy.MaxAttempts,
				Err:         err,
			})
			continue
		}

		lastErr = nil
		last = &result
		if best == nil || result.Accuracy > best.Accuracy {
			best = last
		}

		utils.AttemptToSlog(&result, policy.Threshold)
		notify(ProgressEvent{
			EventType:   EventAttemptComplete,
			Model:       handle.Key(),
			Image:       task.RelPath,
			Attempt:     n,
			MaxAttempts: policy.MaxAttempts,
			Accuracy:    result.Accuracy,
			Threshold:   policy.Threshold,
			Duration:    result.Elapsed,
		})

		if result.Accuracy >= policy.Threshold {
			return result, nil
		}
	}

	if lastErr != nil {
		return models.AttemptResult{}, lastErr
	}
	return *last, &models.QualityThresholdError{
		Attempts:  policy.MaxAttempts,
		Threshold: policy.Threshold,
		Last:      last,
		Best:      best,
	}
}

// retryable reports whether another attempt could change the outcome.
// Configuration and data problems repeat identically.
func retryable(err error) bool {
	var pe *models.ProviderError
	return errors.As(err, &pe)
}
