package execution

import (
	"context"
)

// Transcriber is the interface every OCR backend implements.
type Transcriber interface {
	// Transcribe returns the text the backend reads from the request's image.
	Transcribe(ctx context.Context, req *Request) (*Response, error)

	// Close releases any client resources.
	Close() error
}

// Request is one transcription call.
type Request struct {
	// ImagePath is informational; backends read Payload.
	ImagePath string
	Prompt    Prompt
	Payload   Payload
}

// Response is what a backend returned. Text is the raw model output, before trimming.
type Response struct {
	Text         string
	ModelID      string
	InputTokens  int64
	OutputTokens int64
}
