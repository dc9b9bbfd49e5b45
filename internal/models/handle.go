package models

import "strings"

// Provider names a model vendor or local OCR engine.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderGoogle      Provider = "google"
	ProviderAnthropic   Provider = "anthropic"
	ProviderMistral     Provider = "mistral"
	ProviderGroq        Provider = "groq"
	ProviderNebius      Provider = "nebius"
	ProviderXAI         Provider = "xai"
	ProviderOpenRouter  Provider = "openrouter"
	ProviderDeepSeek    Provider = "deepseek"
	ProviderHuggingFace Provider = "huggingface"
	ProviderCloudVision Provider = "gcv"
	ProviderTesseract   Provider = "tesseract"
	ProviderMock        Provider = "mock"
)

// NormalizeProvider lower-cases a configured provider name so "OpenAI" and "openai" match.
func NormalizeProvider(s string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(s)))
}

// Encoding is how a provider wants image payloads delivered.
type Encoding string

const (
	// EncodingBytes sends the raw file bytes.
	EncodingBytes Encoding = "bytes"
	// EncodingDataURL sends a base64 "data:<mime>;base64,..." URL.
	EncodingDataURL Encoding = "data_url"
)

// providerEncodings is the static capability table. Providers missing from it use EncodingDataURL.
var providerEncodings = map[Provider]Encoding{
	ProviderAnthropic:   EncodingBytes,
	ProviderCloudVision: EncodingBytes,
	ProviderTesseract:   EncodingBytes,
	ProviderMock:        EncodingBytes,
}

// EncodingFor resolves the payload encoding for a provider.
func EncodingFor(p Provider) Encoding {
	if e, ok := providerEncodings[p]; ok {
		return e
	}
	return EncodingDataURL
}

// ModelHandle is a configured model, resolved once at startup and read-only during a run.
type ModelHandle struct {
	Provider    Provider       `json:"provider"`
	ModelID     string         `json:"model_id"`
	DisplayName string         `json:"display_name"`
	Encoding    Encoding       `json:"encoding"`
	APIKeyEnv   string         `json:"api_key_env,omitempty"`
	Link        string         `json:"link,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// NewModelHandle builds a handle with its encoding taken from the capability table.
// An empty displayName falls back to the model id.
func NewModelHandle(provider Provider, modelID, displayName string) ModelHandle {
	if displayName == "" {
		displayName = modelID
	}
	return ModelHandle{
		Provider:    provider,
		ModelID:     modelID,
		DisplayName: displayName,
		Encoding:    EncodingFor(provider),
	}
}

// Key is the persisted result key for this model.
func (h ModelHandle) Key() string {
	if h.DisplayName != "" {
		return h.DisplayName
	}
	return h.ModelID
}
