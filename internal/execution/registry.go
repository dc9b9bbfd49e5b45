package execution

import (
	"fmt"

	"github.com/ocracle/ocracle/internal/models"
)

// RequiresAPIKey reports whether the provider authenticates with an API key
// read from the model's api_key_env.
func RequiresAPIKey(p models.Provider) bool {
	switch p {
	case models.ProviderCloudVision, models.ProviderTesseract, models.ProviderMock:
		return false
	}
	return true
}

// New builds the transcriber for a handle. apiKey is ignored by providers
// that do not use one.
func New(handle models.ModelHandle, apiKey string) (Transcriber, error) {
	opts, err := DecodeOptions(handle.Options)
	if err != nil {
		return nil, &models.ConfigurationError{Field: "models." + handle.Key() + ".options", Reason: "invalid options", Err: err}
	}

	switch handle.Provider {
	case models.ProviderOpenAI:
		return newCompat(handle, apiKey, opts)
	case models.ProviderAnthropic:
		t, err := NewAnthropicTranscriber(handle, apiKey, opts)
		if err != nil {
			return nil, err
		}
		return t, nil
	case models.ProviderCloudVision:
		return NewVisionTranscriber(handle, opts), nil
	case models.ProviderTesseract:
		return NewTesseractTranscriber(handle, opts)
	case models.ProviderMock:
		return &MockTranscriber{modelID: handle.ModelID, EchoGroundTruth: true}, nil
	}

	if _, ok := compatBaseURLs[handle.Provider]; ok {
		return newCompat(handle, apiKey, opts)
	}
	return nil, &models.ConfigurationError{Field: "models." + handle.Key() + ".provider", Reason: fmt.Sprintf("unknown provider %q", handle.Provider)}
}

func newCompat(handle models.ModelHandle, apiKey string, opts ClientOptions) (Transcriber, error) {
	t, err := NewOpenAICompatTranscriber(handle, apiKey, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}
