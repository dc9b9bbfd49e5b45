package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocracle/ocracle/internal/models"
)

func TestNew(t *testing.T) {
	tests := []struct {
		provider models.Provider
		want     any
	}{
		{models.ProviderOpenAI, &OpenAICompatTranscriber{}},
		{models.ProviderGoogle, &OpenAICompatTranscriber{}},
		{models.ProviderOpenRouter, &OpenAICompatTranscriber{}},
		{models.ProviderAnthropic, &AnthropicTranscriber{}},
		{models.ProviderCloudVision, &VisionTranscriber{}},
		{models.ProviderMock, &MockTranscriber{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			tr, err := New(models.NewModelHandle(tt.provider, "some-model", ""), "key")
			require.NoError(t, err)
			assert.IsType(t, tt.want, tr)
			require.NoError(t, tr.Close())
		})
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(models.NewModelHandle("acme", "m", ""), "key")
		var ce *models.ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Contains(t, ce.Reason, "acme")
	})

	t.Run("bad options", func(t *testing.T) {
		h := models.NewModelHandle(models.ProviderOpenAI, "gpt-4o", "")
		h.Options = map[string]any{"nope": true}
		_, err := New(h, "key")
		var ce *models.ConfigurationError
		require.ErrorAs(t, err, &ce)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := New(models.NewModelHandle(models.ProviderAnthropic, "claude", ""), "")
		require.Error(t, err)
	})
}

func TestNewTesseractMatchesBuild(t *testing.T) {
	tr, err := New(models.NewModelHandle(models.ProviderTesseract, "tesseract", ""), "")
	if TesseractAvailable {
		require.NoError(t, err)
		require.NotNil(t, tr)
		return
	}
	require.ErrorContains(t, err, "tags tesseract")
}

func TestRequiresAPIKey(t *testing.T) {
	assert.True(t, RequiresAPIKey(models.ProviderOpenAI))
	assert.True(t, RequiresAPIKey(models.ProviderAnthropic))
	assert.False(t, RequiresAPIKey(models.ProviderCloudVision))
	assert.False(t, RequiresAPIKey(models.ProviderTesseract))
	assert.False(t, RequiresAPIKey(models.ProviderMock))
}
