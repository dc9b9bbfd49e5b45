package execution

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ClientOptions are the per-model knobs accepted under a model's `options:` key.
type ClientOptions struct {
	BaseURL     string   `mapstructure:"base_url"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   int64    `mapstructure:"max_tokens"`
	Timeout     int      `mapstructure:"timeout_seconds"`
	// Detail is the OpenAI image detail level: auto, low or high.
	Detail string `mapstructure:"detail"`
	// Languages are Tesseract language packs, e.g. ["deu", "lat", "grc"].
	Languages []string `mapstructure:"languages"`
}

const defaultMaxTokens = 4096

// DecodeOptions decodes a free-form options map. Unknown keys are rejected.
func DecodeOptions(raw map[string]any) (ClientOptions, error) {
	var opts ClientOptions
	if len(raw) == 0 {
		opts.MaxTokens = defaultMaxTokens
		return opts, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return ClientOptions{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return ClientOptions{}, fmt.Errorf("decoding model options: %w", err)
	}

	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	switch opts.Detail {
	case "", "auto", "low", "high":
	default:
		return ClientOptions{}, fmt.Errorf("decoding model options: detail must be auto, low or high, got %q", opts.Detail)
	}
	return opts, nil
}

// TimeoutDuration returns the per-request timeout, zero when unset.
func (o ClientOptions) TimeoutDuration() time.Duration {
	return time.Duration(o.Timeout) * time.Second
}
