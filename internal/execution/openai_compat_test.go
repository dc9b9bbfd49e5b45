package execution

import (
	"context"
	"errors"
	"testing"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ocracle/ocracle/internal/models"
)

func testRequest(t *testing.T, enc models.Encoding) *Request {
	t.Helper()
	payload, err := EncodePayload([]byte("\x89PNG\r\n\x1a\nfake"), ".png", enc)
	require.NoError(t, err)
	prompt, err := LookupPrompt(PromptHistorical)
	require.NoError(t, err)
	return &Request{ImagePath: "corpus/a/00001.png", Prompt: prompt, Payload: payload}
}

func TestOpenAICompatTranscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatMock := NewMockchatCompletions(ctrl)

	handle := models.NewModelHandle(models.ProviderOpenAI, "gpt-4o", "GPT-4o")
	temp := 0.2
	tr := newOpenAICompatTranscriber(handle, ClientOptions{MaxTokens: 1000, Temperature: &temp, Detail: "high"}, chatMock)

	chatMock.EXPECT().New(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, params oai.ChatCompletionNewParams, _ ...option.RequestOption) (*oai.ChatCompletion, error) {
			assert.Equal(t, "gpt-4o", string(params.Model))
			assert.Equal(t, int64(1000), params.MaxTokens.Value)
			assert.InDelta(t, 0.2, params.Temperature.Value, 1e-9)
			require.Len(t, params.Messages, 2)
			assert.NotNil(t, params.Messages[0].OfSystem)
			assert.NotNil(t, params.Messages[1].OfUser)
			return &oai.ChatCompletion{
				Model: "gpt-4o-2024-08-06",
				Choices: []oai.ChatCompletionChoice{
					{Message: oai.ChatCompletionMessage{Content: "  Anno 1650  "}},
				},
				Usage: oai.CompletionUsage{PromptTokens: 812, CompletionTokens: 7},
			}, nil
		})

	resp, err := tr.Transcribe(context.Background(), testRequest(t, models.EncodingDataURL))
	require.NoError(t, err)
	assert.Equal(t, "  Anno 1650  ", resp.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", resp.ModelID)
	assert.Equal(t, int64(812), resp.InputTokens)
	assert.Equal(t, int64(7), resp.OutputTokens)
}

func TestOpenAICompatSimplePromptHasNoSystemMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	chatMock := NewMockchatCompletions(ctrl)
	tr := newOpenAICompatTranscriber(models.NewModelHandle(models.ProviderGroq, "llama-4", ""), ClientOptions{MaxTokens: 10}, chatMock)

	req := testRequest(t, models.EncodingDataURL)
	simple, err := LookupPrompt(PromptSimple)
	require.NoError(t, err)
	req.Prompt = simple

	chatMock.EXPECT().New(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, params oai.ChatCompletionNewParams, _ ...option.RequestOption) (*oai.ChatCompletion, error) {
			require.Len(t, params.Messages, 1)
			assert.NotNil(t, params.Messages[0].OfUser)
			assert.False(t, params.Temperature.Valid())
			return &oai.ChatCompletion{Choices: []oai.ChatCompletionChoice{{}}}, nil
		})

	resp, err := tr.Transcribe(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Text)
}

func TestOpenAICompatErrors(t *testing.T) {
	handle := models.NewModelHandle(models.ProviderMistral, "pixtral-large-latest", "")

	t.Run("transport error becomes ProviderError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		chatMock := NewMockchatCompletions(ctrl)
		tr := newOpenAICompatTranscriber(handle, ClientOptions{MaxTokens: 10}, chatMock)

		chatMock.EXPECT().New(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := tr.Transcribe(context.Background(), testRequest(t, models.EncodingDataURL))
		var pe *models.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, models.ProviderMistral, pe.Provider)
		assert.Zero(t, pe.StatusCode)
	})

	t.Run("api error keeps the status code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		chatMock := NewMockchatCompletions(ctrl)
		tr := newOpenAICompatTranscriber(handle, ClientOptions{MaxTokens: 10}, chatMock)

		chatMock.EXPECT().New(gomock.Any(), gomock.Any()).Return(nil, &oai.Error{StatusCode: 429})

		_, err := tr.Transcribe(context.Background(), testRequest(t, models.EncodingDataURL))
		var pe *models.ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 429, pe.StatusCode)
	})

	t.Run("empty choices", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		chatMock := NewMockchatCompletions(ctrl)
		tr := newOpenAICompatTranscriber(handle, ClientOptions{MaxTokens: 10}, chatMock)

		chatMock.EXPECT().New(gomock.Any(), gomock.Any()).Return(&oai.ChatCompletion{}, nil)

		_, err := tr.Transcribe(context.Background(), testRequest(t, models.EncodingDataURL))
		require.ErrorContains(t, err, "empty choices")
	})

	t.Run("bytes payload is rejected before any call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		tr := newOpenAICompatTranscriber(handle, ClientOptions{MaxTokens: 10}, NewMockchatCompletions(ctrl))

		_, err := tr.Transcribe(context.Background(), testRequest(t, models.EncodingBytes))
		require.ErrorContains(t, err, "no data URL")
	})
}

func TestNewOpenAICompatTranscriberRequiresKey(t *testing.T) {
	_, err := NewOpenAICompatTranscriber(models.NewModelHandle(models.ProviderOpenAI, "gpt-4o", ""), "", ClientOptions{})
	require.Error(t, err)

	tr, err := NewOpenAICompatTranscriber(models.NewModelHandle(models.ProviderXAI, "grok-4", ""), "sk-test", ClientOptions{MaxTokens: 10})
	require.NoError(t, err)
	require.NotNil(t, tr)
	require.NoError(t, tr.Close())
}
