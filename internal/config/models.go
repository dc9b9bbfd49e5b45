package config

import (
	"errors"
	"fmt"

	"github.com/ocracle/ocracle/internal/execution"
	"github.com/ocracle/ocracle/internal/models"
)

// defaultKeyEnv is the credential variable used when a model omits api_key_env.
var defaultKeyEnv = map[models.Provider]string{
	models.ProviderOpenAI:      "OPENAI_API_KEY",
	models.ProviderGoogle:      "GOOGLE_API_KEY",
	models.ProviderAnthropic:   "ANTHROPIC_API_KEY",
	models.ProviderMistral:     "MISTRAL_API_KEY",
	models.ProviderGroq:        "GROQ_API_KEY",
	models.ProviderNebius:      "NEBIUS_API_KEY",
	models.ProviderXAI:         "XAI_API_KEY",
	models.ProviderOpenRouter:  "OPENROUTER_API_KEY",
	models.ProviderDeepSeek:    "DEEPSEEK_API_KEY",
	models.ProviderHuggingFace: "HF_TOKEN",
}

// ResolvedModel is an enabled model with its credential looked up.
type ResolvedModel struct {
	Handle models.ModelHandle
	APIKey string
}

// Handle builds the ModelHandle for a configured model.
func (m ModelConfig) Handle() models.ModelHandle {
	provider := models.NormalizeProvider(m.Provider)
	h := models.NewModelHandle(provider, m.ID, m.DisplayName)
	h.APIKeyEnv = m.APIKeyEnv
	if h.APIKeyEnv == "" {
		h.APIKeyEnv = defaultKeyEnv[provider]
	}
	h.Link = m.Link
	h.Options = m.Options
	return h
}

// ResolveModels returns every enabled model with its credential. It fails
// with a *models.ConfigurationError when no model is enabled, when display
// names collide, or when an enabled model's credential variable is unset.
// All missing credentials are reported together.
func (c *Config) ResolveModels(getenv func(string) string) ([]ResolvedModel, error) {
	var resolved []ResolvedModel
	var missing []error
	seen := map[string]bool{}

	for i, m := range c.Models {
		if !m.IsEnabled() {
			continue
		}
		h := m.Handle()
		field := fmt.Sprintf("models[%d]", i)

		if seen[h.Key()] {
			return nil, &models.ConfigurationError{Field: field, Reason: fmt.Sprintf("duplicate model name %q", h.Key())}
		}
		seen[h.Key()] = true

		var key string
		if execution.RequiresAPIKey(h.Provider) {
			if h.APIKeyEnv == "" {
				missing = append(missing, fmt.Errorf("%s (%s): no api_key_env", h.Key(), h.Provider))
				continue
			}
			key = getenv(h.APIKeyEnv)
			if key == "" {
				missing = append(missing, fmt.Errorf("%s needs %s", h.Key(), h.APIKeyEnv))
				continue
			}
		}
		resolved = append(resolved, ResolvedModel{Handle: h, APIKey: key})
	}

	if len(missing) > 0 {
		return nil, &models.ConfigurationError{Field: "models", Reason: "missing credentials", Err: errors.Join(missing...)}
	}
	if len(resolved) == 0 {
		return nil, &models.ConfigurationError{Field: "models", Reason: "no enabled models"}
	}
	return resolved, nil
}
