package reporting

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/ocracle/ocracle/internal/metrics"
	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/orchestration"
)

// ModelRun aggregates one model's outcomes in a single run. Rates are percentages.
type ModelRun struct {
	Model    string
	Units    int
	Passed   int
	Failed   int
	Errors   int
	Skipped  int
	Accuracy metrics.Summary
	AvgWER   float64
	AvgCER   float64
	AvgTime  float64
}

// PassRate is Passed over Units, 0..1.
func (m ModelRun) PassRate() float64 {
	if m.Units == 0 {
		return 0
	}
	return float64(m.Passed) / float64(m.Units)
}

// RunSummary is the per-model digest printed at the end of `ocracle run`.
type RunSummary struct {
	Models   []ModelRun
	Units    int
	Passed   int
	Failed   int
	Errors   int
	Duration time.Duration
}

// Summarize folds scheduler outcomes into per-model statistics, sorted by
// mean accuracy descending. Only scored outcomes contribute to metric averages.
func Summarize(outcomes []orchestration.Outcome, elapsed time.Duration) *RunSummary {
	type acc struct {
		run      ModelRun
		accuracy []float64
		wer      []float64
		cer      []float64
		secs     []float64
	}
	byModel := map[string]*acc{}
	var order []string

	sum := &RunSummary{Duration: elapsed}
	for _, o := range outcomes {
		key := o.Handle.Key()
		a, ok := byModel[key]
		if !ok {
			a = &acc{run: ModelRun{Model: key}}
			byModel[key] = a
			order = append(order, key)
		}
		a.run.Units++
		sum.Units++
		switch o.Status {
		case models.StatusPassed:
			a.run.Passed++
			sum.Passed++
		case models.StatusFailed:
			a.run.Failed++
			sum.Failed++
		case models.StatusSkipped:
			a.run.Skipped++
		default:
			a.run.Errors++
			sum.Errors++
		}
		if o.Result != nil {
			a.accuracy = append(a.accuracy, o.Result.Accuracy*100)
			a.wer = append(a.wer, o.Result.WER*100)
			a.cer = append(a.cer, o.Result.CER*100)
			a.secs = append(a.secs, o.Result.Elapsed.Seconds())
		}
	}

	for _, key := range order {
		a := byModel[key]
		a.run.Accuracy = metrics.Summarize(a.accuracy)
		a.run.AvgWER = metrics.Mean(a.wer)
		a.run.AvgCER = metrics.Mean(a.cer)
		a.run.AvgTime = metrics.Mean(a.secs)
		sum.Models = append(sum.Models, a.run)
	}
	slices.SortStableFunc(sum.Models, func(x, y ModelRun) int {
		switch {
		case x.Accuracy.Mean > y.Accuracy.Mean:
			return -1
		case x.Accuracy.Mean < y.Accuracy.Mean:
			return 1
		}
		return 0
	})
	return sum
}

var tableHeader = []string{"Model", "Pairs", "Passed", "Failed", "Errors", "Accuracy", "WER", "CER", "Time (s)"}

// WriteTable prints the summary as an aligned table. Column widths use
// terminal display width so CJK and accented model names line up.
func WriteTable(w io.Writer, s *RunSummary) error {
	rows := [][]string{tableHeader}
	for _, m := range s.Models {
		rows = append(rows, []string{
			m.Model,
			fmt.Sprint(m.Units),
			fmt.Sprint(m.Passed),
			fmt.Sprint(m.Failed),
			fmt.Sprint(m.Errors),
			fmt.Sprintf("%.2f%%", m.Accuracy.Mean),
			fmt.Sprintf("%.2f%%", m.AvgWER),
			fmt.Sprintf("%.2f%%", m.AvgCER),
			fmt.Sprintf("%.2f", m.AvgTime),
		})
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for r, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(row)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, widths[i]))
			}
		}
		b.WriteString("\n")
		if r == 0 {
			total := 0
			for _, wd := range widths {
				total += wd
			}
			b.WriteString(strings.Repeat("─", total+2*(len(widths)-1)))
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "\n%d pairs: %d passed, %d failed, %d errors in %s\n",
		s.Units, s.Passed, s.Failed, s.Errors, s.Duration.Round(time.Millisecond))
	if s.Units > 0 {
		fmt.Fprintf(&b, "%s\n", InterpretPassRate(float64(s.Passed)/float64(s.Units)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
