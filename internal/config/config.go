// Package config loads ocracle.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/utils"
	"github.com/ocracle/ocracle/internal/validation"
)

// FileName is the config file searched for by Load.
const FileName = "ocracle.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultSourceDir  = "."
	DefaultResultsDir = "results/"

	DefaultImagesToProcess = 0
	DefaultPolicy          = "random"

	DefaultConcurrency = 5
	DefaultPrompt      = "historical"

	DefaultMaxAttempts = 5
	DefaultThreshold   = 0.75
)

// PathsConfig holds the data and results directories.
type PathsConfig struct {
	// Source is the data root. Result files mirror the image tree below it.
	Source  string `yaml:"source,omitempty"`
	Results string `yaml:"results,omitempty"`
	// Transcripts, when set, receives one JSON transcript per attempt.
	Transcripts string `yaml:"transcripts,omitempty"`
	// Include and Exclude are glob patterns matched against image paths relative to Source.
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// InputConfig is one folder below the data root to sample images from.
type InputConfig struct {
	Path string `yaml:"path"`
	// ImagesToProcess overrides the selection cap for this folder. Nil uses selection.images_to_process.
	ImagesToProcess *int `yaml:"images_to_process,omitempty"`
}

// SelectionConfig chooses which images a run processes.
type SelectionConfig struct {
	Policy          string `yaml:"policy,omitempty"`
	ImagesToProcess int    `yaml:"images_to_process,omitempty"`
	Seed            *int64 `yaml:"seed,omitempty"`
	// Legacy switches, honored only when Policy is empty.
	AvoidRescan       *bool `yaml:"avoid_rescan,omitempty"`
	PrioritizeScanned *bool `yaml:"prioritize_scanned,omitempty"`
}

// RunConfig holds dispatch settings.
type RunConfig struct {
	Concurrency int    `yaml:"concurrency,omitempty"`
	Prompt      string `yaml:"prompt,omitempty"`
}

// RetryConfig holds the quality controller settings.
type RetryConfig struct {
	MaxAttempts          int      `yaml:"max_attempts,omitempty"`
	Threshold            *float64 `yaml:"threshold,omitempty"`
	PersistBestOnFailure *bool    `yaml:"persist_best_on_failure,omitempty"`
}

// ModelConfig is one entry of the models list.
type ModelConfig struct {
	Provider    string         `yaml:"provider"`
	ID          string         `yaml:"id"`
	DisplayName string         `yaml:"display_name,omitempty"`
	Enabled     *bool          `yaml:"enabled,omitempty"`
	APIKeyEnv   string         `yaml:"api_key_env,omitempty"`
	Link        string         `yaml:"link,omitempty"`
	Options     map[string]any `yaml:"options,omitempty"`
}

// IsEnabled reports whether the model takes part in runs. Models are disabled unless enabled: true.
func (m ModelConfig) IsEnabled() bool {
	return m.Enabled != nil && *m.Enabled
}

// PublishConfig holds the Azure Blob Storage target for `ocracle publish`.
type PublishConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
	Gzip       *bool  `yaml:"gzip,omitempty"`
}

// Config is the top-level configuration loaded from ocracle.yaml.
type Config struct {
	Paths     PathsConfig     `yaml:"paths,omitempty"`
	Inputs    []InputConfig   `yaml:"inputs,omitempty"`
	Selection SelectionConfig `yaml:"selection,omitempty"`
	Run       RunConfig       `yaml:"run,omitempty"`
	Retry     RetryConfig     `yaml:"retry,omitempty"`
	Models    []ModelConfig   `yaml:"models,omitempty"`
	Publish   PublishConfig   `yaml:"publish,omitempty"`

	// path is the file the config was loaded from, empty for defaults.
	path string
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Paths: PathsConfig{
			Source:  DefaultSourceDir,
			Results: DefaultResultsDir,
		},
		Selection: SelectionConfig{
			Policy:          "",
			ImagesToProcess: DefaultImagesToProcess,
		},
		Run: RunConfig{
			Concurrency: DefaultConcurrency,
			Prompt:      DefaultPrompt,
		},
		Retry: RetryConfig{
			MaxAttempts:          DefaultMaxAttempts,
			Threshold:            utils.Ptr(DefaultThreshold),
			PersistBestOnFailure: utils.Ptr(false),
		},
		Publish: PublishConfig{
			Gzip: utils.Ptr(false),
		},
	}
}

// Path returns the file the config was loaded from, or "" when running on defaults.
func (c *Config) Path() string {
	return c.path
}

// Dir is the directory relative paths in the config resolve against.
func (c *Config) Dir() string {
	if c.path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return filepath.Dir(c.path)
}

// SourceDir returns the absolute-or-config-relative data root.
func (c *Config) SourceDir() string {
	return utils.ResolvePath(c.Paths.Source, c.Dir())
}

// ResultsDir returns the absolute-or-config-relative results root.
func (c *Config) ResultsDir() string {
	return utils.ResolvePath(c.Paths.Results, c.Dir())
}

// TranscriptDir returns the transcript directory, or "" when transcripts are off.
func (c *Config) TranscriptDir() string {
	return utils.ResolvePath(c.Paths.Transcripts, c.Dir())
}

// Threshold returns the configured accuracy threshold.
func (c *Config) Threshold() float64 {
	if c.Retry.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Retry.Threshold
}

// PersistBestOnFailure reports whether threshold misses record their best attempt.
func (c *Config) PersistBestOnFailure() bool {
	return c.Retry.PersistBestOnFailure != nil && *c.Retry.PersistBestOnFailure
}

// Validate range-checks the run settings. The schema covers the file, but
// command-line overrides land after it, so run calls this once they are applied.
func (c *Config) Validate() error {
	if t := c.Threshold(); t < 0 || t > 1 {
		return &models.ConfigurationError{Field: "retry.threshold", Reason: fmt.Sprintf("%g is outside [0, 1]", t)}
	}
	if c.Retry.MaxAttempts < 1 {
		return &models.ConfigurationError{Field: "retry.max_attempts", Reason: fmt.Sprintf("%d is below 1", c.Retry.MaxAttempts)}
	}
	if c.Run.Concurrency < 1 {
		return &models.ConfigurationError{Field: "run.concurrency", Reason: fmt.Sprintf("%d is below 1", c.Run.Concurrency)}
	}
	if c.Selection.ImagesToProcess < 0 {
		return &models.ConfigurationError{Field: "selection.images_to_process", Reason: fmt.Sprintf("%d is negative", c.Selection.ImagesToProcess)}
	}
	for i, in := range c.Inputs {
		if in.ImagesToProcess != nil && *in.ImagesToProcess < 0 {
			return &models.ConfigurationError{Field: fmt.Sprintf("inputs[%d].images_to_process", i), Reason: fmt.Sprintf("%d is negative", *in.ImagesToProcess)}
		}
	}
	return nil
}

// Load finds ocracle.yaml by walking up from startDir (max 10 levels),
// validates it, unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// A .env file next to the config, if present, is loaded into the environment
// without overriding variables that are already set.
func Load(startDir string) (*Config, error) {
	cfg := New()
	p, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parse(cfg, p, data)
}

// LoadFile loads an explicit config path. The file must exist.
func LoadFile(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &models.ConfigurationError{Field: "config", Reason: "cannot read config file", Err: err}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	return parse(New(), abs, data)
}

func parse(cfg *Config, p string, data []byte) (*Config, error) {
	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, &models.ConfigurationError{
			Field:  filepath.Base(p),
			Reason: "schema validation failed",
			Err:    errors.New(strings.Join(errs, "; ")),
		}
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(p), err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.path = p

	if err := loadDotEnv(filepath.Dir(p)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads dir/.env when it exists. Existing variables win.
func loadDotEnv(dir string) error {
	p := filepath.Join(dir, ".env")
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", p, err)
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("loading %s: %w", p, err)
	}
	return nil
}

// findConfigFile walks up from dir looking for ocracle.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	// Paths
	if src.Paths.Source != "" {
		dst.Paths.Source = src.Paths.Source
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Transcripts != "" {
		dst.Paths.Transcripts = src.Paths.Transcripts
	}
	if len(src.Paths.Include) > 0 {
		dst.Paths.Include = src.Paths.Include
	}
	if len(src.Paths.Exclude) > 0 {
		dst.Paths.Exclude = src.Paths.Exclude
	}

	if len(src.Inputs) > 0 {
		dst.Inputs = src.Inputs
	}

	// Selection
	if src.Selection.Policy != "" {
		dst.Selection.Policy = src.Selection.Policy
	}
	if src.Selection.ImagesToProcess != 0 {
		dst.Selection.ImagesToProcess = src.Selection.ImagesToProcess
	}
	if src.Selection.Seed != nil {
		dst.Selection.Seed = src.Selection.Seed
	}
	if src.Selection.AvoidRescan != nil {
		dst.Selection.AvoidRescan = src.Selection.AvoidRescan
	}
	if src.Selection.PrioritizeScanned != nil {
		dst.Selection.PrioritizeScanned = src.Selection.PrioritizeScanned
	}

	// Run
	if src.Run.Concurrency != 0 {
		dst.Run.Concurrency = src.Run.Concurrency
	}
	if src.Run.Prompt != "" {
		dst.Run.Prompt = src.Run.Prompt
	}

	// Retry
	if src.Retry.MaxAttempts != 0 {
		dst.Retry.MaxAttempts = src.Retry.MaxAttempts
	}
	if src.Retry.Threshold != nil {
		dst.Retry.Threshold = src.Retry.Threshold
	}
	if src.Retry.PersistBestOnFailure != nil {
		dst.Retry.PersistBestOnFailure = src.Retry.PersistBestOnFailure
	}

	if len(src.Models) > 0 {
		dst.Models = src.Models
	}

	// Publish
	if src.Publish.AccountURL != "" {
		dst.Publish.AccountURL = src.Publish.AccountURL
	}
	if src.Publish.Container != "" {
		dst.Publish.Container = src.Publish.Container
	}
	if src.Publish.Prefix != "" {
		dst.Publish.Prefix = src.Publish.Prefix
	}
	if src.Publish.Gzip != nil {
		dst.Publish.Gzip = src.Publish.Gzip
	}
}
