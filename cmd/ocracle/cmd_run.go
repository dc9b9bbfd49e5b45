package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ocracle/ocracle/internal/config"
	"github.com/ocracle/ocracle/internal/discovery"
	"github.com/ocracle/ocracle/internal/execution"
	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/orchestration"
	"github.com/ocracle/ocracle/internal/reporting"
	"github.com/ocracle/ocracle/internal/results"
	"github.com/ocracle/ocracle/internal/selection"
	"github.com/ocracle/ocracle/internal/spinner"
	"github.com/ocracle/ocracle/internal/transcript"
	"github.com/ocracle/ocracle/internal/utils"
)

var (
	runConfigPath    string
	runSourceDir     string
	runResultsDir    string
	runTranscriptDir string
	runImages        int
	runConcurrency   int
	runMaxAttempts   int
	runThreshold     float64
	runPolicy        string
	runModelFilters  []string
	runDryRun        bool
	runJUnitPath     string
	runReportPath    string
	runSeed          int64
	runVerbose       bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the OCR benchmark",
		Long: `Run the OCR benchmark described by ocracle.yaml.

Images are discovered under the source directory, sampled by the selection
policy, and transcribed by every enabled model. Each attempt is scored against
the image's .gt.txt ground truth and retried until it reaches the accuracy
threshold or runs out of attempts. Accepted results are merged into per-image
JSON files, then folder summaries and the manifest are rebuilt.

Flags override values from the config file.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to ocracle.yaml (default: search upward from the working directory)")
	cmd.Flags().StringVar(&runSourceDir, "source", "", "Data directory with images and ground truth")
	cmd.Flags().StringVar(&runResultsDir, "results", "", "Results directory")
	cmd.Flags().StringVar(&runTranscriptDir, "transcript-dir", "", "Directory to save per-attempt transcript JSON files")
	cmd.Flags().IntVarP(&runImages, "images", "n", 0, "Images to process per input (0 = all)")
	cmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "Maximum concurrent model calls (default from config: 5)")
	cmd.Flags().IntVar(&runMaxAttempts, "max-attempts", 0, "Attempts per pair before giving up (default from config: 5)")
	cmd.Flags().Float64Var(&runThreshold, "threshold", 0, "Accuracy fraction an attempt must reach (default from config: 0.75)")
	cmd.Flags().StringVar(&runPolicy, "policy", "", "Selection policy: random, avoid-rescan, prioritize-missing")
	cmd.Flags().StringArrayVar(&runModelFilters, "model", nil, "Only run models whose name or id matches this glob (can be repeated)")
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Use the mock transcriber instead of calling providers")
	cmd.Flags().StringVar(&runJUnitPath, "junit", "", "Write JUnit XML results to this path")
	cmd.Flags().StringVar(&runReportPath, "report", "", "Write the leaderboard to this path (.md or .html)")
	cmd.Flags().Int64Var(&runSeed, "seed", 0, "Seed for image sampling")
	cmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print every unit, not only failures")

	return cmd
}

func runCommandE(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}
	applyRunOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	policy, err := selection.ResolvePolicy(cfg.Selection.Policy, cfg.Selection.AvoidRescan, cfg.Selection.PrioritizeScanned)
	if err != nil {
		return err
	}
	prompt, err := execution.LookupPrompt(cfg.Run.Prompt)
	if err != nil {
		return &models.ConfigurationError{Field: "run.prompt", Err: err}
	}

	handles, clients, err := buildTranscribers(cfg, runModelFilters, runDryRun)
	if err != nil {
		return err
	}
	defer closeTranscribers(clients)

	sourceDir := cfg.SourceDir()
	if info, err := os.Stat(sourceDir); err != nil || !info.IsDir() {
		return &models.ConfigurationError{Field: "paths.source", Reason: fmt.Sprintf("source directory %s is not readable", sourceDir), Err: err}
	}

	store := results.NewStore(cfg.ResultsDir())
	keys := make([]string, len(handles))
	for i, h := range handles {
		keys[i] = h.Key()
	}
	selector := selection.NewSelector(policy, cfg.Selection.ImagesToProcess, cfg.Selection.Seed, store, keys)

	inputs := make([]selection.Input, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		inputs = append(inputs, selection.Input{Dir: utils.ResolvePath(in.Path, sourceDir), Limit: in.ImagesToProcess})
	}
	tasks, err := selector.Collect(sourceDir, inputs, discovery.Filter{Include: cfg.Paths.Include, Exclude: cfg.Paths.Exclude})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Source: %s\n", sourceDir)
	fmt.Fprintf(out, "Results: %s\n", store.Root())
	fmt.Fprintf(out, "Models: %s\n", strings.Join(keys, ", "))
	fmt.Fprintf(out, "Images: %d (policy %s)\n", len(tasks), policy)
	fmt.Fprintf(out, "Retry: up to %d attempt(s) at threshold %.2f, concurrency %d\n", cfg.Retry.MaxAttempts, cfg.Threshold(), cfg.Run.Concurrency)
	if runDryRun {
		fmt.Fprintln(out, "Dry run: using the mock transcriber")
	}
	fmt.Fprintln(out)

	if len(tasks) == 0 {
		fmt.Fprintln(out, "No images selected; nothing to do.")
		return nil
	}

	runner := orchestration.NewAttemptRunner(clients, prompt)
	if dir := cfg.TranscriptDir(); dir != "" {
		runner.OnAttempt(transcriptHook(dir, prompt))
	}

	sched := orchestration.NewScheduler(runner,
		orchestration.WithMaxConcurrency(cfg.Run.Concurrency),
		orchestration.WithRetryPolicy(orchestration.RetryPolicy{MaxAttempts: cfg.Retry.MaxAttempts, Threshold: cfg.Threshold()}),
		orchestration.WithRecorder(store),
		orchestration.WithPersistBestOnFailure(cfg.PersistBestOnFailure()),
	)
	sched.OnProgress(newConsoleProgress(out, runVerbose).listen)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	var outcomes []orchestration.Outcome
	for o := range sched.RunAll(ctx, handles, tasks) {
		outcomes = append(outcomes, o)
	}
	elapsed := time.Since(started)
	interrupted := ctx.Err()
	stop()

	outcomes = appendSkipped(outcomes, handles, tasks)

	if err := aggregate(cmd.ErrOrStderr(), store.Root()); err != nil {
		return err
	}

	summary := reporting.Summarize(outcomes, elapsed)
	fmt.Fprintln(out)
	if err := reporting.WriteTable(out, summary); err != nil {
		return err
	}
	if skipped := summary.Units - summary.Passed - summary.Failed - summary.Errors; skipped > 0 {
		fmt.Fprintf(out, "%d pair(s) not started.\n", skipped)
	}

	if runJUnitPath != "" {
		suites := reporting.ConvertToJUnit("ocracle", outcomes, cfg.Threshold(), started)
		if err := reporting.WriteJUnitXML(suites, runJUnitPath); err != nil {
			return fmt.Errorf("failed to write JUnit XML: %w", err)
		}
		fmt.Fprintf(out, "JUnit results saved to: %s\n", runJUnitPath)
	}
	if runReportPath != "" {
		if err := writeLeaderboard(store.Root(), runReportPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Leaderboard saved to: %s\n", runReportPath)
	}

	if interrupted != nil {
		return fmt.Errorf("benchmark interrupted: %w", interrupted)
	}
	if summary.Failed > 0 || summary.Errors > 0 {
		return &TestFailureError{
			Message: fmt.Sprintf("benchmark completed with %d failed and %d error(s)", summary.Failed, summary.Errors),
		}
	}
	return nil
}

// applyRunOverrides lays explicitly set flags over the loaded config.
func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if runSourceDir != "" {
		cfg.Paths.Source = absOrSelf(runSourceDir)
	}
	if runResultsDir != "" {
		cfg.Paths.Results = absOrSelf(runResultsDir)
	}
	if runTranscriptDir != "" {
		cfg.Paths.Transcripts = absOrSelf(runTranscriptDir)
	}
	if flags.Changed("images") {
		cfg.Selection.ImagesToProcess = runImages
		// the flag caps every input
		for i := range cfg.Inputs {
			cfg.Inputs[i].ImagesToProcess = nil
		}
	}
	if flags.Changed("concurrency") {
		cfg.Run.Concurrency = runConcurrency
	}
	if flags.Changed("max-attempts") {
		cfg.Retry.MaxAttempts = runMaxAttempts
	}
	if flags.Changed("threshold") {
		cfg.Retry.Threshold = utils.Ptr(runThreshold)
	}
	if runPolicy != "" {
		cfg.Selection.Policy = runPolicy
	}
	if flags.Changed("seed") {
		cfg.Selection.Seed = utils.Ptr(runSeed)
	}
}

// absOrSelf resolves flag paths against the working directory rather than the config file.
func absOrSelf(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// buildTranscribers resolves enabled, filter-matching models and creates one
// client per model. Dry runs skip credentials and answer with ground truth.
func buildTranscribers(cfg *config.Config, filters []string, dryRun bool) ([]models.ModelHandle, map[string]execution.Transcriber, error) {
	var enabled []models.ModelHandle
	for _, m := range cfg.Models {
		if m.IsEnabled() {
			enabled = append(enabled, m.Handle())
		}
	}
	selected, err := orchestration.FilterModels(enabled, filters)
	if err != nil {
		return nil, nil, &models.ConfigurationError{Field: "--model", Err: err}
	}
	if len(selected) == 0 {
		return nil, nil, &models.ConfigurationError{Field: "models", Reason: "no enabled models match"}
	}
	keep := map[string]bool{}
	for _, h := range selected {
		keep[h.Key()] = true
	}

	clients := map[string]execution.Transcriber{}
	if dryRun {
		for _, h := range selected {
			mock := execution.NewMockTranscriber(h.ModelID)
			mock.EchoGroundTruth = true
			clients[h.Key()] = mock
		}
		return selected, clients, nil
	}

	filtered := *cfg
	filtered.Models = nil
	for _, m := range cfg.Models {
		if m.IsEnabled() && keep[m.Handle().Key()] {
			filtered.Models = append(filtered.Models, m)
		}
	}
	resolved, err := filtered.ResolveModels(os.Getenv)
	if err != nil {
		return nil, nil, err
	}

	handles := make([]models.ModelHandle, 0, len(resolved))
	for _, r := range resolved {
		t, err := execution.New(r.Handle, r.APIKey)
		if err != nil {
			closeTranscribers(clients)
			return nil, nil, err
		}
		clients[r.Handle.Key()] = t
		handles = append(handles, r.Handle)
	}
	return handles, clients, nil
}

func closeTranscribers(clients map[string]execution.Transcriber) {
	for key, t := range clients {
		if err := t.Close(); err != nil {
			slog.Warn("closing transcriber", "model", key, "error", err)
		}
	}
}

// transcriptHook writes one JSON transcript per attempt into dir.
func transcriptHook(dir string, prompt execution.Prompt) orchestration.AttemptHook {
	text := prompt.User
	if prompt.System != "" {
		text = prompt.System + "\n\n" + prompt.User
	}
	return func(h models.ModelHandle, task models.ImageTask, n int, raw string, result *models.AttemptResult, err error, startedAt time.Time) {
		t := transcript.Build(h, task.RelPath, n, text, raw, result, err, startedAt)
		if _, werr := transcript.Write(dir, t); werr != nil {
			slog.Warn("failed to write transcript", "model", h.Key(), "image", task.RelPath, "error", werr)
		}
	}
}

// appendSkipped adds a skipped outcome for every pair the scheduler never started.
func appendSkipped(outcomes []orchestration.Outcome, handles []models.ModelHandle, tasks []models.ImageTask) []orchestration.Outcome {
	if len(outcomes) == len(handles)*len(tasks) {
		return outcomes
	}
	done := make(map[[2]string]bool, len(outcomes))
	for _, o := range outcomes {
		done[[2]string{o.Handle.Key(), o.Task.RelPath}] = true
	}
	for _, h := range handles {
		for _, t := range tasks {
			if !done[[2]string{h.Key(), t.RelPath}] {
				outcomes = append(outcomes, orchestration.Outcome{Handle: h, Task: t, Status: models.StatusSkipped, Err: context.Canceled})
			}
		}
	}
	return outcomes
}

// aggregate rebuilds every folder summary and the manifest behind a spinner.
func aggregate(w io.Writer, root string) error {
	stopSpinner := spinner.Start(w, "Rebuilding summaries and manifest")
	m, err := results.RebuildAll(root)
	stopSpinner()
	if err != nil {
		var dataErr *models.DataError
		if errors.As(err, &dataErr) {
			slog.Warn("aggregation skipped a file", "error", err)
			return nil
		}
		return fmt.Errorf("aggregating results: %w", err)
	}
	slog.Debug("Manifest rebuilt", "folders", len(m.Files))
	return nil
}
