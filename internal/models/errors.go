package models

import "fmt"

// ConfigurationError aborts a run before any work is scheduled.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Field != "" {
		msg += " in " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError wraps a failed model call. It is retryable.
type ProviderError struct {
	Provider   Provider
	ModelID    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s/%s: HTTP %d: %v", e.Provider, e.ModelID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s/%s: %v", e.Provider, e.ModelID, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// QualityThresholdError means every attempt scored below the accuracy threshold.
type QualityThresholdError struct {
	Attempts  int
	Threshold float64
	Last      *AttemptResult
	Best      *AttemptResult
}

func (e *QualityThresholdError) Error() string {
	acc := 0.0
	if e.Last != nil {
		acc = e.Last.Accuracy
	}
	return fmt.Sprintf("accuracy %.2f%% below threshold %.2f%% after %d attempt(s)", acc*100, e.Threshold*100, e.Attempts)
}

// DataError flags a bad input or result file. The affected file or pair is skipped.
type DataError struct {
	Path string
	Err  error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error in %s: %v", e.Path, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }
