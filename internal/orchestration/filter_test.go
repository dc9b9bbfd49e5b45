package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocracle/ocracle/internal/models"
)

func sampleHandles() []models.ModelHandle {
	return []models.ModelHandle{
		models.NewModelHandle(models.ProviderOpenAI, "gpt-4o", "GPT-4o"),
		models.NewModelHandle(models.ProviderAnthropic, "claude-sonnet-4-5", "Claude Sonnet 4.5"),
		models.NewModelHandle(models.ProviderOpenRouter, "z-ai/glm-4.5v", "GLM 4.5V"),
		models.NewModelHandle(models.ProviderGoogle, "gemini-2.5-pro", "Gemini 2.5 Pro"),
	}
}

func TestFilterModels_NoPatterns(t *testing.T) {
	result, err := FilterModels(sampleHandles(), nil)
	require.NoError(t, err)
	assert.Len(t, result, 4, "empty patterns should return all models")
}

func TestFilterModels_ExactName(t *testing.T) {
	result, err := FilterModels(sampleHandles(), []string{"Claude Sonnet 4.5"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "claude-sonnet-4-5", result[0].ModelID)
}

func TestFilterModels_IDWithSlash(t *testing.T) {
	result, err := FilterModels(sampleHandles(), []string{"z-ai/*"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "GLM 4.5V", result[0].DisplayName)
}

func TestFilterModels_MultiplePatterns(t *testing.T) {
	result, err := FilterModels(sampleHandles(), []string{"gpt-*", "Gemini*"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "gpt-4o", result[0].ModelID)
	assert.Equal(t, "gemini-2.5-pro", result[1].ModelID)
}

func TestFilterModels_NoMatch(t *testing.T) {
	result, err := FilterModels(sampleHandles(), []string{"llama*"})
	require.NoError(t, err)
	assert.Len(t, result, 0)
}

func TestFilterModels_ProviderQualified(t *testing.T) {
	result, err := FilterModels(sampleHandles(), []string{"anthropic/*", "openrouter/z-ai/*"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "claude-sonnet-4-5", result[0].ModelID)
	assert.Equal(t, "z-ai/glm-4.5v", result[1].ModelID)
}

func TestFilterModels_CaseInsensitive(t *testing.T) {
	result, err := FilterModels(sampleHandles(), []string{"GPT-4O", "gemini 2.5*"})
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestFilterModels_InvalidPattern(t *testing.T) {
	_, err := FilterModels(sampleHandles(), []string{"["})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model filter pattern")
}
