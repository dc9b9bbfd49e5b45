// Package scoring compares a transcription against its ground truth.
package scoring

import (
	"unicode/utf8"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff aligns candidate against reference at character level and derives span counts.
// Deletions are reference text the candidate missed; insertions are text the candidate added.
func Diff(candidate, reference string) models.DiffRecord {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(reference, candidate, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	rec := models.DiffRecord{Spans: make([]models.DiffSpan, 0, len(diffs))}
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		var op models.DiffOp
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = models.DiffMatch
			rec.Matches += n
		case diffmatchpatch.DiffDelete:
			op = models.DiffDelete
			rec.Deletions += n
		case diffmatchpatch.DiffInsert:
			op = models.DiffInsert
			rec.Insertions += n
		}
		rec.Spans = append(rec.Spans, models.DiffSpan{Op: op, Text: d.Text})
	}

	rec.Accuracy = accuracy(rec.Matches, utf8.RuneCountInString(reference), utf8.RuneCountInString(candidate))
	return rec
}

// accuracy is matches over the longer input; two empty inputs agree perfectly.
func accuracy(matches, refLen, candLen int) float64 {
	longest := max(refLen, candLen)
	if longest == 0 {
		return 1.0
	}
	return float64(matches) / float64(longest)
}
