package execution

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ocracle/ocracle/internal/models"
)

// MockTranscriber is a scripted transcriber for dry runs and tests.
//
// Responses are returned in call order and the last one repeats once the
// script runs out. When Errors has an entry for a call index, that error is
// returned instead. With no script and EchoGroundTruth set, the image's
// ground truth file is returned, which gives a perfect score.
type MockTranscriber struct {
	modelID string

	Responses       []string
	Errors          []error
	EchoGroundTruth bool

	mu    sync.Mutex
	calls int
}

// NewMockTranscriber creates a mock that answers with responses in order.
func NewMockTranscriber(modelID string, responses ...string) *MockTranscriber {
	return &MockTranscriber{modelID: modelID, Responses: responses}
}

func (m *MockTranscriber) Transcribe(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	n := m.calls
	m.calls++
	m.mu.Unlock()

	if n < len(m.Errors) && m.Errors[n] != nil {
		return nil, m.Errors[n]
	}

	var text string
	switch {
	case len(m.Responses) > 0:
		text = m.Responses[min(n, len(m.Responses)-1)]
	case m.EchoGroundTruth:
		b, err := os.ReadFile(models.GroundTruthPath(req.ImagePath))
		if err != nil {
			return nil, fmt.Errorf("mock: %w", err)
		}
		text = strings.TrimRight(string(b), "\r\n")
	default:
		text = fmt.Sprintf("Mock transcription of %s", req.ImagePath)
	}

	return &Response{Text: text, ModelID: m.modelID}, nil
}

// Calls returns how many times Transcribe was called.
func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockTranscriber) Close() error { return nil }
