package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptResultEntryScalesToPercent(t *testing.T) {
	r := &AttemptResult{
		GroundTruth:   "The quick fox",
		Transcription: "The quik fox",
		WER:           1.0 / 3.0,
		CER:           0.1,
		Accuracy:      0.9,
		Elapsed:       1500 * time.Millisecond,
		Diff: DiffRecord{
			Spans:      []DiffSpan{{Op: DiffMatch, Text: "The qui"}, {Op: DiffDelete, Text: "c"}},
			Matches:    12,
			Deletions:  1,
			Insertions: 0,
		},
	}

	e := r.Entry()
	require.True(t, e.Complete())
	assert.InDelta(t, 33.333, *e.WER, 0.001)
	assert.InDelta(t, 10.0, *e.CER, 1e-9)
	assert.InDelta(t, 90.0, *e.Accuracy, 1e-9)
	assert.InDelta(t, 1.5, *e.Time, 1e-9)
	assert.Equal(t, 12, e.Matches)
	assert.Len(t, e.Diffs, 2)
}

func TestModelEntryCompleteRequiresAllMetrics(t *testing.T) {
	var e ModelEntry
	require.NoError(t, json.Unmarshal([]byte(`{"gt":"a","response":"a","wer":0,"cer":0,"accuracy":100}`), &e))
	assert.False(t, e.Complete(), "time is missing")

	require.NoError(t, json.Unmarshal([]byte(`{"gt":"a","response":"a","wer":0,"cer":0,"accuracy":100,"time":0.4}`), &e))
	assert.True(t, e.Complete())
}

func TestModelEntryJSONKeys(t *testing.T) {
	data, err := json.Marshal(ModelEntry{GroundTruth: "g", Response: "r", WER: Float(0), CER: Float(0), Accuracy: Float(100), Time: Float(1)})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"gt", "response", "wer", "cer", "accuracy", "time", "matches", "deletions", "insertions"} {
		assert.Contains(t, raw, key)
	}
}
