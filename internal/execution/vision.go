package execution

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/ocracle/ocracle/internal/models"
)

// VisionTranscriber runs Google Cloud Vision document text detection as a non-LLM baseline.
// Credentials come from Application Default Credentials.
type VisionTranscriber struct {
	handle models.ModelHandle
	opts   ClientOptions

	mu     sync.Mutex
	client *vision.ImageAnnotatorClient
}

// NewVisionTranscriber returns a transcriber that dials lazily on first use.
func NewVisionTranscriber(handle models.ModelHandle, opts ClientOptions) *VisionTranscriber {
	return &VisionTranscriber{handle: handle, opts: opts}
}

func (t *VisionTranscriber) annotator(ctx context.Context) (*vision.ImageAnnotatorClient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return t.client, nil
	}
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, err
	}
	t.client = client
	return client, nil
}

func (t *VisionTranscriber) Transcribe(ctx context.Context, req *Request) (*Response, error) {
	client, err := t.annotator(ctx)
	if err != nil {
		return nil, &models.ProviderError{Provider: t.handle.Provider, ModelID: t.handle.ModelID, Err: fmt.Errorf("creating vision client: %w", err)}
	}

	image, err := vision.NewImageFromReader(bytes.NewReader(req.Payload.Data))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	var imageContext *visionpb.ImageContext
	if len(t.opts.Languages) > 0 {
		imageContext = &visionpb.ImageContext{LanguageHints: t.opts.Languages}
	}

	annotation, err := client.DetectDocumentText(ctx, image, imageContext)
	if err != nil {
		return nil, &models.ProviderError{Provider: t.handle.Provider, ModelID: t.handle.ModelID, Err: err}
	}

	text := ""
	if annotation != nil {
		text = annotation.Text
	}
	return &Response{Text: text, ModelID: t.handle.ModelID}, nil
}

func (t *VisionTranscriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}
