package utils

import (
	"context"
	"log/slog"

	"github.com/ocracle/ocracle/internal/models"
)

// AttemptToSlog logs one scored attempt at debug level.
func AttemptToSlog(result *models.AttemptResult, threshold float64) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"model", result.DisplayName,
		"image", result.ImageRelPath,
		"attempt", result.Attempt,
		"accuracy", result.Accuracy,
		"accepted", result.Accuracy >= threshold,
		"elapsed", result.Elapsed,
	}

	attrs = addIf(attrs, "wer", nonZero(result.WER))
	attrs = addIf(attrs, "cer", nonZero(result.CER))
	attrs = addIf(attrs, "insertions", nonZero(result.Diff.Insertions))
	attrs = addIf(attrs, "deletions", nonZero(result.Diff.Deletions))

	slog.Debug("Attempt scored", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name)
		attrs = append(attrs, *v)
	}

	return attrs
}

func nonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
