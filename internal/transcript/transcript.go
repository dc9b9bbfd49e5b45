package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ocracle/ocracle/internal/models"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

func sanitizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "-", "/", "_", "\\", "_").Replace(s)
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.Trim(s, ".")
	if s == "" {
		s = "unnamed"
	}
	return s
}

// Filename returns the transcript filename for one attempt.
func Filename(model, image string, attempt int, ts time.Time) string {
	return fmt.Sprintf("%s-%s-a%d-%s.json", sanitizeName(model), sanitizeName(models.ImageStem(image)), attempt, ts.Format("20060102-150405"))
}

// Write serializes an AttemptTranscript into dir.
func Write(dir string, t *models.AttemptTranscript) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	path := filepath.Join(dir, Filename(t.Model, t.Image, t.Attempt, t.StartedAt))

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	return path, nil
}

// Build constructs the transcript of one attempt. result may be nil when the
// call failed before scoring.
func Build(handle models.ModelHandle, image string, attempt int, prompt string, rawResponse string, result *models.AttemptResult, callErr error, startedAt time.Time) *models.AttemptTranscript {
	t := &models.AttemptTranscript{
		Model:       handle.Key(),
		ModelID:     handle.ModelID,
		Image:       image,
		Attempt:     attempt,
		Status:      models.StatusError,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Prompt:      prompt,
		RawResponse: rawResponse,
	}
	t.DurationMs = t.CompletedAt.Sub(startedAt).Milliseconds()

	if callErr != nil {
		t.ErrorMsg = callErr.Error()
	}
	if result != nil {
		t.Status = models.StatusPassed
		t.Response = result.Transcription
		t.GroundTruth = result.GroundTruth
		t.Accuracy = result.Accuracy
		t.WER = result.WER
		t.CER = result.CER
		t.DurationMs = result.Elapsed.Milliseconds()
	}
	return t
}
