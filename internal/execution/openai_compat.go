package execution

//go:generate go tool mockgen -source openai_compat.go -destination mock_openai_compat_test.go -package execution

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/ocracle/ocracle/internal/models"
)

// compatBaseURLs are the OpenAI-compatible endpoints of providers other than OpenAI itself.
var compatBaseURLs = map[models.Provider]string{
	models.ProviderGoogle:      "https://generativelanguage.googleapis.com/v1beta/openai/",
	models.ProviderMistral:     "https://api.mistral.ai/v1/",
	models.ProviderGroq:        "https://api.groq.com/openai/v1/",
	models.ProviderNebius:      "https://api.studio.nebius.com/v1/",
	models.ProviderXAI:         "https://api.x.ai/v1/",
	models.ProviderOpenRouter:  "https://openrouter.ai/api/v1/",
	models.ProviderDeepSeek:    "https://api.deepseek.com/v1/",
	models.ProviderHuggingFace: "https://router.huggingface.co/v1/",
}

// chatCompletions is just an interface over [*oai.ChatCompletionService]
type chatCompletions interface {
	// New maps to [oai.ChatCompletionService.New]
	New(ctx context.Context, body oai.ChatCompletionNewParams, opts ...option.RequestOption) (*oai.ChatCompletion, error)
}

// OpenAICompatTranscriber sends images through the chat completions API.
type OpenAICompatTranscriber struct {
	handle models.ModelHandle
	opts   ClientOptions
	chat   chatCompletions
}

// NewOpenAICompatTranscriber builds a client for OpenAI or any provider in compatBaseURLs.
func NewOpenAICompatTranscriber(handle models.ModelHandle, apiKey string, opts ClientOptions) (*OpenAICompatTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key must not be empty", handle.Provider)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// retries are owned by the quality controller
		option.WithMaxRetries(0),
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = compatBaseURLs[handle.Provider]
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	if timeout := opts.TimeoutDuration(); timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	client := oai.NewClient(reqOpts...)
	return newOpenAICompatTranscriber(handle, opts, &client.Chat.Completions), nil
}

func newOpenAICompatTranscriber(handle models.ModelHandle, opts ClientOptions, chat chatCompletions) *OpenAICompatTranscriber {
	return &OpenAICompatTranscriber{handle: handle, opts: opts, chat: chat}
}

func (t *OpenAICompatTranscriber) Transcribe(ctx context.Context, req *Request) (*Response, error) {
	if req.Payload.DataURL == "" {
		return nil, fmt.Errorf("%s: payload has no data URL", t.handle.Provider)
	}

	resp, err := t.chat.New(ctx, t.buildParams(req))
	if err != nil {
		return nil, openAIProviderError(t.handle, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &models.ProviderError{Provider: t.handle.Provider, ModelID: t.handle.ModelID, Err: errors.New("empty choices in response")}
	}

	return &Response{
		Text:         resp.Choices[0].Message.Content,
		ModelID:      resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (t *OpenAICompatTranscriber) buildParams(req *Request) oai.ChatCompletionNewParams {
	var messages []oai.ChatCompletionMessageParamUnion
	if req.Prompt.System != "" {
		messages = append(messages, oai.SystemMessage(req.Prompt.System))
	}

	image := oai.ChatCompletionContentPartImageImageURLParam{URL: req.Payload.DataURL}
	if t.opts.Detail != "" {
		image.Detail = t.opts.Detail
	}
	parts := []oai.ChatCompletionContentPartUnionParam{
		oai.TextContentPart(req.Prompt.User),
		oai.ImageContentPart(image),
	}
	messages = append(messages, oai.UserMessage(parts))

	params := oai.ChatCompletionNewParams{
		Model:     shared.ChatModel(t.handle.ModelID),
		Messages:  messages,
		MaxTokens: param.NewOpt(t.opts.MaxTokens),
	}
	if t.opts.Temperature != nil {
		params.Temperature = param.NewOpt(*t.opts.Temperature)
	}
	return params
}

func (t *OpenAICompatTranscriber) Close() error { return nil }

func openAIProviderError(handle models.ModelHandle, err error) error {
	pe := &models.ProviderError{Provider: handle.Provider, ModelID: handle.ModelID, Err: err}
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.StatusCode
	}
	return pe
}
