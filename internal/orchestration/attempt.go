package orchestration

//go:generate go tool mockgen -destination mock_transcriber_test.go -package orchestration github.com/ocracle/ocracle/internal/execution Transcriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ocracle/ocracle/internal/execution"
	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/scoring"
)

// Attempter runs one transcription attempt of a task by a model.
type Attempter interface {
	Attempt(ctx context.Context, handle models.ModelHandle, task models.ImageTask, n int) (models.AttemptResult, error)
}

// AttemptHook observes every attempt after it finishes. result is nil when the call failed.
type AttemptHook func(handle models.ModelHandle, task models.ImageTask, n int, raw string, result *models.AttemptResult, err error, startedAt time.Time)

// AttemptRunner performs the call-trim-score sequence against a set of transcribers.
type AttemptRunner struct {
	clients map[string]execution.Transcriber
	prompt  execution.Prompt
	hook    AttemptHook
}

// NewAttemptRunner creates a runner. clients is keyed by ModelHandle.Key().
func NewAttemptRunner(clients map[string]execution.Transcriber, prompt execution.Prompt) *AttemptRunner {
	return &AttemptRunner{clients: clients, prompt: prompt}
}

// OnAttempt sets a hook called after each attempt; used for transcripts.
func (r *AttemptRunner) OnAttempt(hook AttemptHook) {
	r.hook = hook
}

// Attempt loads and encodes the image, calls the model, trims the reply and scores it.
// An empty reply is scored, not treated as an error.
func (r *AttemptRunner) Attempt(ctx context.Context, handle models.ModelHandle, task models.ImageTask, n int) (models.AttemptResult, error) {
	startedAt := time.Now()
	raw, result, err := r.attempt(ctx, handle, task, n)
	if r.hook != nil {
		var res *models.AttemptResult
		if err == nil {
			res = &result
		}
		r.hook(handle, task, n, raw, res, err, startedAt)
	}
	return result, err
}

func (r *AttemptRunner) attempt(ctx context.Context, handle models.ModelHandle, task models.ImageTask, n int) (string, models.AttemptResult, error) {
	client, ok := r.clients[handle.Key()]
	if !ok {
		return "", models.AttemptResult{}, &models.ConfigurationError{Field: "models", Reason: fmt.Sprintf("no client for model %q", handle.Key())}
	}

	payload, err := execution.LoadPayload(task.Path, handle.Encoding)
	if err != nil {
		return "", models.AttemptResult{}, &models.DataError{Path: task.Path, Err: err}
	}

	start := time.Now()
	resp, err := client.Transcribe(ctx, &execution.Request{
		ImagePath: task.Path,
		Prompt:    r.prompt,
		Payload:   payload,
	})
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return "", models.AttemptResult{}, ctx.Err()
		}
		var pe *models.ProviderError
		if !errors.As(err, &pe) {
			err = &models.ProviderError{Provider: handle.Provider, ModelID: handle.ModelID, Err: err}
		}
		return "", models.AttemptResult{}, err
	}

	text := execution.Trim(handle.ModelID, resp.Text)
	diff := scoring.Diff(text, task.GroundTruth)
	wer, cer := scoring.Metrics(text, task.GroundTruth)

	return resp.Text, models.AttemptResult{
		ModelID:       handle.ModelID,
		DisplayName:   handle.Key(),
		ImagePath:     task.Path,
		ImageRelPath:  task.RelPath,
		GroundTruth:   task.GroundTruth,
		Transcription: text,
		Diff:          diff,
		WER:           wer,
		CER:           cer,
		Accuracy:      diff.Accuracy,
		Elapsed:       elapsed,
		Attempt:       n,
	}, nil
}
