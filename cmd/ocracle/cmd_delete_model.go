package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/results"
)

var (
	deleteModelConfigPath  string
	deleteModelResultsPath string
	deleteModelDryRun      bool
)

func newDeleteModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-model <display-name>",
		Short: "Remove a model's results from every result file",
		Long: `Remove the entry stored under <display-name> from every per-image result
file, then rebuild folder summaries and the manifest. Files left without any
model are deleted, so their images count as unscanned on the next run.

The results directory defaults to paths.results from ocracle.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: deleteModelCommandE,
	}

	cmd.Flags().StringVarP(&deleteModelConfigPath, "config", "c", "", "Path to ocracle.yaml")
	cmd.Flags().StringVar(&deleteModelResultsPath, "results", "", "Results directory (overrides config)")
	cmd.Flags().BoolVar(&deleteModelDryRun, "dry-run", false, "Report what would change without writing")

	return cmd
}

func deleteModelCommandE(cmd *cobra.Command, args []string) error {
	name := args[0]
	root, err := editRoot(deleteModelConfigPath, deleteModelResultsPath)
	if err != nil {
		return err
	}

	stats, err := results.NewStore(root).DeleteModel(name, deleteModelDryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printEditStats(out, stats, deleteModelDryRun)
	if stats.Changes() == 0 {
		fmt.Fprintf(out, "Model %q was not found in any result file.\n", name)
		return nil
	}
	if deleteModelDryRun {
		return nil
	}
	if err := aggregate(cmd.ErrOrStderr(), root); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %q from %d file(s).\n", name, stats.Changes())
	return nil
}

// editRoot resolves the results directory for the model-editing commands.
func editRoot(configPath, override string) (string, error) {
	var args []string
	if override != "" {
		args = []string{override}
	}
	root, err := resultsRoot(configPath, args)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(root); err != nil {
		return "", &models.ConfigurationError{Field: "paths.results", Reason: fmt.Sprintf("results directory %s is not readable", root), Err: err}
	}
	return root, nil
}
