package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `paths:
  source: GT4HistOCR
  results: docs/json
inputs:
  - path: corpus/EarlyModernLatin/1471-Orthographia-Tortellius
    images_to_process: 3
selection:
  policy: prioritize-missing
  seed: 42
run:
  concurrency: 5
  prompt: historical
retry:
  max_attempts: 5
  threshold: 0.75
models:
  - provider: OpenAI
    id: gpt-4o
    enabled: true
    api_key_env: OPENAI_API_KEY
    options:
      temperature: 0
      max_tokens: 4096
  - provider: tesseract
    id: tesseract-5
    options:
      languages: [deu, lat]
`

const invalidConfigYAML = `selection:
  policy: newest-first
retry:
  threshold: 1.5
run:
  concurrency: 0
models:
  - provider: openai
    api_key_env: "1BAD"
unknown_key: true
`

func TestValidateConfigBytes_Valid(t *testing.T) {
	errs := ValidateConfigBytes([]byte(validConfigYAML))
	assert.Empty(t, errs)
}

func TestValidateConfigBytes_Empty(t *testing.T) {
	assert.Empty(t, ValidateConfigBytes(nil))
	assert.Empty(t, ValidateConfigBytes([]byte("# nothing\n")))
}

func TestValidateConfigBytes_Invalid(t *testing.T) {
	errs := ValidateConfigBytes([]byte(invalidConfigYAML))
	require.NotEmpty(t, errs)

	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "/selection/policy")
	assert.Contains(t, joined, "/retry/threshold")
	assert.Contains(t, joined, "/run/concurrency")
	assert.Contains(t, joined, "/models/0")
	assert.Contains(t, joined, "/models/0/api_key_env")
}

func TestValidateConfigBytes_BadYAML(t *testing.T) {
	errs := ValidateConfigBytes([]byte("models: [\n"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")
}

func TestConvertToJSONCompatible(t *testing.T) {
	in := map[string]any{
		"opts": map[any]any{1: "one", "two": []any{map[any]any{"k": true}}},
	}
	out := convertToJSONCompatible(in).(map[string]any)
	opts := out["opts"].(map[string]any)
	assert.Equal(t, "one", opts["1"])
	inner := opts["two"].([]any)[0].(map[string]any)
	assert.Equal(t, true, inner["k"])
}
