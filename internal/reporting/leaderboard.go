package reporting

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ocracle/ocracle/internal/metrics"
	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/results"
	"github.com/ocracle/ocracle/internal/statistics"
)

// LeaderboardRow is one model across every indexed folder. Rates are percentages.
type LeaderboardRow struct {
	Model    string
	Images   int
	Accuracy metrics.Summary
	// CI is the bootstrap 95% interval of mean accuracy.
	CI      statistics.ConfidenceInterval
	AvgWER  float64
	AvgCER  float64
	AvgTime float64
	// Gap is the paired accuracy difference to the next row on shared images.
	Gap *statistics.ConfidenceInterval
}

// Leaderboard ranks models by mean per-image accuracy.
type Leaderboard struct {
	Generated string
	Folders   int
	Rows      []LeaderboardRow
}

// BuildLeaderboard reads the manifest under root and every per-image file it
// lists. Unreadable per-image files are skipped with a warning.
func BuildLeaderboard(root string) (*Leaderboard, error) {
	m, err := results.LoadManifest(root)
	if err != nil {
		return nil, err
	}

	type series struct {
		accuracy map[string]float64
		wer      []float64
		cer      []float64
		secs     []float64
	}
	byModel := map[string]*series{}
	lb := &Leaderboard{Generated: m.Generated}

	for _, sub := range m.Structure {
		for _, entry := range sub {
			lb.Folders++
			for _, rel := range entry.IndividualFiles {
				data, err := results.LoadFile(filepath.Join(root, filepath.FromSlash(rel)))
				if err != nil {
					var dataErr *models.DataError
					if errors.As(err, &dataErr) {
						slog.Warn("skipping unreadable result file", "file", rel, "error", err)
						continue
					}
					return nil, err
				}
				for model, e := range data {
					if !e.Complete() {
						continue
					}
					s := byModel[model]
					if s == nil {
						s = &series{accuracy: map[string]float64{}}
						byModel[model] = s
					}
					s.accuracy[rel] = *e.Accuracy
					s.wer = append(s.wer, *e.WER)
					s.cer = append(s.cer, *e.CER)
					s.secs = append(s.secs, *e.Time)
				}
			}
		}
	}

	for model, s := range byModel {
		acc := valuesSorted(s.accuracy)
		lb.Rows = append(lb.Rows, LeaderboardRow{
			Model:    model,
			Images:   len(acc),
			Accuracy: metrics.Summarize(acc),
			CI:       statistics.BootstrapCIWithSeed(acc, 0.95, statistics.DefaultSeed),
			AvgWER:   metrics.Mean(s.wer),
			AvgCER:   metrics.Mean(s.cer),
			AvgTime:  metrics.Mean(s.secs),
		})
	}
	slices.SortFunc(lb.Rows, func(a, b LeaderboardRow) int {
		switch {
		case a.Accuracy.Mean > b.Accuracy.Mean:
			return -1
		case a.Accuracy.Mean < b.Accuracy.Mean:
			return 1
		}
		return strings.Compare(a.Model, b.Model)
	})

	for i := 0; i+1 < len(lb.Rows); i++ {
		a, b := byModel[lb.Rows[i].Model], byModel[lb.Rows[i+1].Model]
		var xs, ys []float64
		for _, img := range sortedKeys(a.accuracy) {
			if y, ok := b.accuracy[img]; ok {
				xs = append(xs, a.accuracy[img])
				ys = append(ys, y)
			}
		}
		if len(xs) < 2 {
			continue
		}
		gap := statistics.PairedDifferenceCI(xs, ys, 0.95, statistics.DefaultSeed)
		lb.Rows[i].Gap = &gap
	}
	return lb, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func valuesSorted(m map[string]float64) []float64 {
	keys := sortedKeys(m)
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// RenderMarkdown writes the leaderboard as a GitHub-flavored Markdown table.
func RenderMarkdown(w io.Writer, lb *Leaderboard) error {
	var b strings.Builder
	b.WriteString("# OCR Leaderboard\n\n")
	fmt.Fprintf(&b, "Generated %s from %d folder(s).\n\n", lb.Generated, lb.Folders)
	b.WriteString("| Rank | Model | Images | Accuracy | Std Dev | 95% CI | WER | CER | Time (s) | Rating |\n")
	b.WriteString("|---:|---|---:|---:|---:|---|---:|---:|---:|---|\n")
	for i, r := range lb.Rows {
		fmt.Fprintf(&b, "| %d | %s | %d | %.2f%% | %.2f | %.2f-%.2f | %.2f%% | %.2f%% | %.2f | %s |\n",
			i+1, escapeCell(r.Model), r.Images, r.Accuracy.Mean, r.Accuracy.StdDev,
			r.CI.Lower, r.CI.Upper, r.AvgWER, r.AvgCER, r.AvgTime, InterpretAccuracy(r.Accuracy.Mean))
	}

	var notes []string
	for i, r := range lb.Rows {
		if r.Gap == nil || !statistics.IsSignificant(*r.Gap) {
			continue
		}
		notes = append(notes, fmt.Sprintf("- %s leads %s by %.2f points (95%% CI %.2f to %.2f).",
			r.Model, lb.Rows[i+1].Model, r.Gap.Mean, r.Gap.Lower, r.Gap.Upper))
	}
	if len(notes) > 0 {
		b.WriteString("\n## Significant gaps\n\n")
		b.WriteString(strings.Join(notes, "\n"))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderHTML converts the Markdown leaderboard to a standalone HTML page.
func RenderHTML(w io.Writer, lb *Leaderboard) error {
	var src bytes.Buffer
	if err := RenderMarkdown(&src, lb); err != nil {
		return err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering leaderboard: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString("OCR Leaderboard"), body.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
