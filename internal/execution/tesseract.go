//go:build tesseract

package execution

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/ocracle/ocracle/internal/models"
)

// TesseractAvailable reports whether this binary was built with the tesseract tag.
const TesseractAvailable = true

// TesseractTranscriber runs a local Tesseract engine as an offline baseline.
type TesseractTranscriber struct {
	handle        models.ModelHandle
	opts          ClientOptions
	clientFactory func() *gosseract.Client
}

// NewTesseractTranscriber builds a transcriber. The model id is informational.
func NewTesseractTranscriber(handle models.ModelHandle, opts ClientOptions) (Transcriber, error) {
	return &TesseractTranscriber{handle: handle, opts: opts, clientFactory: gosseract.NewClient}, nil
}

func (t *TesseractTranscriber) Transcribe(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// gosseract clients are not safe for concurrent use; one per call.
	c := t.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(req.Payload.Data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(t.opts.Languages) > 0 {
		if err := c.SetLanguage(t.opts.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return nil, &models.ProviderError{Provider: t.handle.Provider, ModelID: t.handle.ModelID, Err: err}
	}
	return &Response{Text: text, ModelID: t.handle.ModelID}, nil
}

func (t *TesseractTranscriber) Close() error { return nil }
