package models

// Status is the final state of one model x image pair.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
	// StatusSkipped marks pairs never dispatched because the run was interrupted.
	StatusSkipped Status = "skipped"
)
