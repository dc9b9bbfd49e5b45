package models

import "time"

// DiffOp is the kind of an aligned diff span.
type DiffOp string

const (
	DiffMatch  DiffOp = "match"
	DiffInsert DiffOp = "insert"
	DiffDelete DiffOp = "delete"
)

// DiffSpan is one aligned run of text.
type DiffSpan struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// DiffRecord is the character alignment of a candidate against a reference.
// Counts are rune lengths; Accuracy is a 0..1 fraction.
type DiffRecord struct {
	Spans      []DiffSpan `json:"spans"`
	Matches    int        `json:"matches"`
	Insertions int        `json:"insertions"`
	Deletions  int        `json:"deletions"`
	Accuracy   float64    `json:"accuracy"`
}

// AttemptResult is one scored transcription of one image by one model.
// WER, CER and Accuracy are 0..1 fractions.
type AttemptResult struct {
	ModelID       string        `json:"model_id"`
	DisplayName   string        `json:"display_name"`
	ImagePath     string        `json:"image_path"`
	ImageRelPath  string        `json:"image_rel_path"`
	GroundTruth   string        `json:"ground_truth"`
	Transcription string        `json:"transcription"`
	Diff          DiffRecord    `json:"diff"`
	WER           float64       `json:"wer"`
	CER           float64       `json:"cer"`
	Accuracy      float64       `json:"accuracy"`
	Elapsed       time.Duration `json:"elapsed"`
	Attempt       int           `json:"attempt"`
}

// Entry converts the attempt to its persisted, percentage-scaled form.
func (r *AttemptResult) Entry() ModelEntry {
	return ModelEntry{
		GroundTruth: r.GroundTruth,
		Response:    r.Transcription,
		WER:         Float(r.WER * 100),
		CER:         Float(r.CER * 100),
		Accuracy:    Float(r.Accuracy * 100),
		Time:        Float(r.Elapsed.Seconds()),
		Diffs:       r.Diff.Spans,
		Matches:     r.Diff.Matches,
		Deletions:   r.Diff.Deletions,
		Insertions:  r.Diff.Insertions,
	}
}
