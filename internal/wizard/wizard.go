// Package wizard collects starter settings for a new ocracle.yaml.
package wizard

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/ocracle/ocracle/internal/config"
	"github.com/ocracle/ocracle/internal/models"
)

// CatalogModel is a preset model offered by the wizard.
type CatalogModel struct {
	Provider    models.Provider
	ID          string
	DisplayName string
}

// Key identifies the model in the multi-select.
func (m CatalogModel) Key() string {
	return string(m.Provider) + "/" + m.ID
}

// Catalog lists the models written into every generated config. Only the
// ones picked in the wizard are enabled.
var Catalog = []CatalogModel{
	{models.ProviderOpenAI, "gpt-4o", "GPT-4o"},
	{models.ProviderGoogle, "gemini-2.5-flash", "Gemini 2.5 Flash"},
	{models.ProviderGoogle, "gemini-2.5-pro", "Gemini 2.5 Pro"},
	{models.ProviderAnthropic, "claude-opus-4-20250514", "Claude Opus 4"},
	{models.ProviderMistral, "mistral-small-2506", "Mistral Small"},
	{models.ProviderGroq, "meta-llama/llama-4-scout-17b-16e-instruct", "Llama 4 Scout"},
	{models.ProviderNebius, "Qwen/Qwen2.5-VL-72B-Instruct", "Qwen2.5-VL 72B"},
	{models.ProviderXAI, "grok-4", "Grok 4"},
	{models.ProviderOpenRouter, "z-ai/glm-4.5v", "GLM-4.5V"},
	{models.ProviderCloudVision, "document-text", "Google Cloud Vision"},
	{models.ProviderTesseract, "tesseract", "Tesseract"},
}

// InitSpec holds all fields collected during the interactive wizard.
type InitSpec struct {
	SourceDir       string
	ResultsDir      string
	ImagesToProcess int
	Concurrency     int
	Threshold       float64
	Prompt          string
	// Enabled holds CatalogModel keys.
	Enabled []string
}

// DefaultSpec returns the answers used when the wizard is skipped.
func DefaultSpec() *InitSpec {
	return &InitSpec{
		SourceDir:       "data",
		ResultsDir:      config.DefaultResultsDir,
		ImagesToProcess: 10,
		Concurrency:     config.DefaultConcurrency,
		Threshold:       config.DefaultThreshold,
		Prompt:          config.DefaultPrompt,
		Enabled:         []string{Catalog[0].Key()},
	}
}

const configTemplate = `# ocracle benchmark configuration
paths:
  source: {{ quote .SourceDir }}
  results: {{ quote .ResultsDir }}

selection:
  policy: random
  images_to_process: {{ .ImagesToProcess }}

run:
  concurrency: {{ .Concurrency }}
  prompt: {{ .Prompt }}

retry:
  max_attempts: {{ maxAttempts }}
  threshold: {{ .Threshold }}

models:
{{- range catalog }}
  - provider: {{ .Provider }}
    id: {{ quote .ID }}
    display_name: {{ quote .DisplayName }}
    enabled: {{ enabled . }}
{{- end }}
`

// GenerateConfigYAML renders an ocracle.yaml from the given spec.
func GenerateConfigYAML(spec *InitSpec) (string, error) {
	funcs := template.FuncMap{
		"quote":       strconv.Quote,
		"catalog":     func() []CatalogModel { return Catalog },
		"enabled":     func(m CatalogModel) bool { return slices.Contains(spec.Enabled, m.Key()) },
		"maxAttempts": func() int { return config.DefaultMaxAttempts },
	}
	tmpl, err := template.New("config").Funcs(funcs).Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// RunInitWizard runs an interactive huh form seeded with initial.
func RunInitWizard(in io.Reader, out io.Writer, initial *InitSpec) (*InitSpec, error) {
	spec := *initial
	images := strconv.Itoa(spec.ImagesToProcess)
	concurrency := strconv.Itoa(spec.Concurrency)
	threshold := strconv.FormatFloat(spec.Threshold, 'f', -1, 64)

	options := make([]huh.Option[string], 0, len(Catalog))
	for _, m := range Catalog {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", m.DisplayName, m.Provider), m.Key()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Data directory").
				Description("Folder holding images and their .gt.txt transcriptions").
				Value(&spec.SourceDir).
				Validate(required("data directory")),
			huh.NewInput().
				Title("Results directory").
				Value(&spec.ResultsDir).
				Validate(required("results directory")),
			huh.NewInput().
				Title("Images per run").
				Description("0 processes every image").
				Value(&images).
				Validate(intAtLeast(0)),
			huh.NewInput().
				Title("Concurrent requests").
				Value(&concurrency).
				Validate(intAtLeast(1)),
			huh.NewInput().
				Title("Accuracy threshold").
				Description("Attempts below this fraction are retried").
				Value(&threshold).
				Validate(fraction),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Prompt").
				Options(
					huh.NewOption("historical", "historical"),
					huh.NewOption("simple", "simple"),
				).
				Value(&spec.Prompt),
			huh.NewMultiSelect[string]().
				Title("Models to enable").
				Options(options...).
				Value(&spec.Enabled),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	spec.SourceDir = strings.TrimSpace(spec.SourceDir)
	spec.ResultsDir = strings.TrimSpace(spec.ResultsDir)
	spec.ImagesToProcess, _ = strconv.Atoi(strings.TrimSpace(images))
	spec.Concurrency, _ = strconv.Atoi(strings.TrimSpace(concurrency))
	spec.Threshold, _ = strconv.ParseFloat(strings.TrimSpace(threshold), 64)
	return &spec, nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func intAtLeast(lo int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%q is not a whole number", s)
		}
		if n < lo {
			return fmt.Errorf("must be at least %d", lo)
		}
		return nil
	}
}

func fraction(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f > 1 {
		return fmt.Errorf("%q is not a number between 0 and 1", s)
	}
	return nil
}
