package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/results"
)

var (
	aggregateConfigPath string
	aggregateFolder     string
)

func newAggregateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate [results-dir]",
		Short: "Rebuild folder summaries and the manifest",
		Long: `Rebuild every <folder>.json summary and manifest.json from the per-image
result files on disk. Summaries are recomputed from scratch, so running this
twice gives the same files. With --folder only that folder's summary is rebuilt,
followed by the manifest.

The results directory defaults to paths.results from ocracle.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: aggregateCommandE,
	}

	cmd.Flags().StringVarP(&aggregateConfigPath, "config", "c", "", "Path to ocracle.yaml")
	cmd.Flags().StringVar(&aggregateFolder, "folder", "", "Rebuild only this folder (relative to the results directory)")

	return cmd
}

func aggregateCommandE(cmd *cobra.Command, args []string) error {
	root, err := resultsRoot(aggregateConfigPath, args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(root); err != nil {
		return &models.ConfigurationError{Field: "paths.results", Reason: fmt.Sprintf("results directory %s is not readable", root), Err: err}
	}
	out := cmd.OutOrStdout()

	if aggregateFolder != "" {
		folder := filepath.Join(root, filepath.FromSlash(aggregateFolder))
		summary, err := results.RebuildFolderSummary(root, folder)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Summary %s: %d model(s)\n", results.SummaryPath(folder), len(summary))
		m, err := results.RebuildManifest(root)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Manifest: %d folder(s)\n", len(m.Files))
		return nil
	}

	if err := aggregate(cmd.ErrOrStderr(), root); err != nil {
		return err
	}
	m, err := results.LoadManifest(root)
	if err != nil {
		return err
	}
	for _, f := range m.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	fmt.Fprintf(out, "Manifest: %d folder(s) in %s\n", len(m.Files), filepath.Join(root, results.ManifestFile))
	return nil
}

// resultsRoot takes the results directory from args, else from config.
func resultsRoot(configPath string, args []string) (string, error) {
	if len(args) > 0 {
		return absOrSelf(args[0]), nil
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}
	return cfg.ResultsDir(), nil
}
