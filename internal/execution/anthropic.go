package execution

//go:generate go tool mockgen -source anthropic.go -destination mock_anthropic_test.go -package execution

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ocracle/ocracle/internal/models"
)

// anthropicMessages is just an interface over [*anthropic.MessageService]
type anthropicMessages interface {
	// New maps to [anthropic.MessageService.New]
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicTranscriber sends raw image bytes as a base64 image block to the Messages API.
type AnthropicTranscriber struct {
	handle   models.ModelHandle
	opts     ClientOptions
	messages anthropicMessages
}

// NewAnthropicTranscriber builds a Claude client.
func NewAnthropicTranscriber(handle models.ModelHandle, apiKey string, opts ClientOptions) (*AnthropicTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key must not be empty", handle.Provider)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if timeout := opts.TimeoutDuration(); timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	client := anthropic.NewClient(reqOpts...)
	return &AnthropicTranscriber{handle: handle, opts: opts, messages: &client.Messages}, nil
}

func (t *AnthropicTranscriber) Transcribe(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Payload.Data) == 0 {
		return nil, fmt.Errorf("%s: payload has no image bytes", t.handle.Provider)
	}

	msg, err := t.messages.New(ctx, t.buildParams(req))
	if err != nil {
		pe := &models.ProviderError{Provider: t.handle.Provider, ModelID: t.handle.ModelID, Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			pe.StatusCode = apiErr.StatusCode
		}
		return nil, pe
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &Response{
		Text:         sb.String(),
		ModelID:      string(msg.Model),
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}, nil
}

func (t *AnthropicTranscriber) buildParams(req *Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(t.handle.ModelID),
		MaxTokens: t.opts.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(req.Payload.MediaType, req.Payload.Base64()),
				anthropic.NewTextBlock(req.Prompt.User),
			),
		},
	}
	if req.Prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Prompt.System}}
	}
	if t.opts.Temperature != nil {
		params.Temperature = anthropic.Float(*t.opts.Temperature)
	}
	return params
}

func (t *AnthropicTranscriber) Close() error { return nil }
