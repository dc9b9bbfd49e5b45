package models

import "time"

// AttemptTranscript is the per-attempt JSON file written to the transcript directory.
type AttemptTranscript struct {
	Model       string    `json:"model"`
	ModelID     string    `json:"model_id"`
	Image       string    `json:"image"`
	Attempt     int       `json:"attempt"`
	Status      Status    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Prompt      string    `json:"prompt"`
	RawResponse string    `json:"raw_response"`
	Response    string    `json:"response"`
	GroundTruth string    `json:"ground_truth"`
	Accuracy    float64   `json:"accuracy"`
	WER         float64   `json:"wer"`
	CER         float64   `json:"cer"`
	ErrorMsg    string    `json:"error_msg,omitempty"`
}
