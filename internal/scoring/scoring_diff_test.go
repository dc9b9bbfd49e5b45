package scoring

import (
	"strings"
	"testing"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_EdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		candidate  string
		reference  string
		accuracy   float64
		matches    int
		insertions int
		deletions  int
	}{
		{"both empty", "", "", 1.0, 0, 0, 0},
		{"all insertion", "abc", "", 0.0, 0, 3, 0},
		{"all deletion", "", "abc", 0.0, 0, 0, 3},
		{"identical", "Lorem ipsum", "Lorem ipsum", 1.0, 11, 0, 0},
		{"multibyte counts runes", "ſtraße", "ſtraße", 1.0, 6, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Diff(tt.candidate, tt.reference)
			assert.InDelta(t, tt.accuracy, rec.Accuracy, 1e-9)
			assert.Equal(t, tt.matches, rec.Matches)
			assert.Equal(t, tt.insertions, rec.Insertions)
			assert.Equal(t, tt.deletions, rec.Deletions)
		})
	}
}

func TestDiff_SpansReconstructBothSides(t *testing.T) {
	reference := "Thucydides Atheniensis bellum"
	candidate := "Thucidides Atheniensis bellvm scripsit"

	rec := Diff(candidate, reference)

	var ref, cand strings.Builder
	for _, s := range rec.Spans {
		switch s.Op {
		case models.DiffMatch:
			ref.WriteString(s.Text)
			cand.WriteString(s.Text)
		case models.DiffDelete:
			ref.WriteString(s.Text)
		case models.DiffInsert:
			cand.WriteString(s.Text)
		}
	}
	assert.Equal(t, reference, ref.String())
	assert.Equal(t, candidate, cand.String())
	assert.Less(t, rec.Accuracy, 1.0)
	assert.Greater(t, rec.Accuracy, 0.0)
}

func TestDiff_Deterministic(t *testing.T) {
	a := Diff("The quik brown fox", "The quick brown fox")
	b := Diff("The quik brown fox", "The quick brown fox")
	assert.Equal(t, a, b)
}

func TestDiff_AccuracyBounded(t *testing.T) {
	pairs := [][2]string{
		{"a", strings.Repeat("a", 100)},
		{strings.Repeat("xyz ", 50), "x"},
		{"ᾅ καὶ", "ἅ και"},
	}
	for _, p := range pairs {
		rec := Diff(p[0], p[1])
		require.GreaterOrEqual(t, rec.Accuracy, 0.0)
		require.LessOrEqual(t, rec.Accuracy, 1.0)
	}
}
