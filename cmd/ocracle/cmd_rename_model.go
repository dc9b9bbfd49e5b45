package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/results"
)

var (
	renameModelConfigPath  string
	renameModelResultsPath string
	renameModelFromConfig  bool
	renameModelDryRun      bool
)

func newRenameModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename-model [<old> <new>]",
		Short: "Rename a model's key in every result file",
		Long: `Move the entry stored under <old> to <new> in every per-image result file,
then rebuild folder summaries and the manifest.

With --from-config no names are given: every configured model whose display
name differs from its id has results stored under the id renamed to the
display name. A file that already holds the new name is left unchanged and
reported as a conflict.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if renameModelFromConfig {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: renameModelCommandE,
	}

	cmd.Flags().StringVarP(&renameModelConfigPath, "config", "c", "", "Path to ocracle.yaml")
	cmd.Flags().StringVar(&renameModelResultsPath, "results", "", "Results directory (overrides config)")
	cmd.Flags().BoolVar(&renameModelFromConfig, "from-config", false, "Rename model ids to their configured display names")
	cmd.Flags().BoolVar(&renameModelDryRun, "dry-run", false, "Report what would change without writing")

	return cmd
}

func renameModelCommandE(cmd *cobra.Command, args []string) error {
	mapping, err := renameMapping(args)
	if err != nil {
		return err
	}
	root, err := editRoot(renameModelConfigPath, renameModelResultsPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(mapping) == 0 {
		fmt.Fprintln(out, "Nothing to rename.")
		return nil
	}
	for _, from := range sortedKeys(mapping) {
		fmt.Fprintf(out, "%s -> %s\n", from, mapping[from])
	}

	stats, err := results.NewStore(root).RenameModels(mapping, renameModelDryRun)
	if err != nil {
		return err
	}
	printEditStats(out, stats, renameModelDryRun)
	if stats.Changes() == 0 || renameModelDryRun {
		return nil
	}
	return aggregate(cmd.ErrOrStderr(), root)
}

// renameMapping builds the old -> new key mapping from args or from the config.
func renameMapping(args []string) (map[string]string, error) {
	if !renameModelFromConfig {
		if args[0] == args[1] {
			return nil, &models.ConfigurationError{Field: "rename-model", Reason: "old and new names are the same"}
		}
		return map[string]string{args[0]: args[1]}, nil
	}

	cfg, err := loadConfig(renameModelConfigPath)
	if err != nil {
		return nil, err
	}
	mapping := map[string]string{}
	for _, m := range cfg.Models {
		h := m.Handle()
		if h.ModelID != h.Key() {
			mapping[h.ModelID] = h.Key()
		}
	}
	return mapping, nil
}

func printEditStats(w io.Writer, stats results.EditStats, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, "Dry run, no files written.")
	}
	fmt.Fprintf(w, "Files processed: %d\n", stats.Files)
	fmt.Fprintf(w, "Files modified: %d\n", len(stats.Modified))
	if len(stats.Removed) > 0 {
		fmt.Fprintf(w, "Files removed: %d\n", len(stats.Removed))
	}
	for _, p := range stats.Conflicts {
		fmt.Fprintf(w, "Conflict: %s already holds the new name\n", p)
	}
	if len(stats.Skipped) > 0 {
		fmt.Fprintf(w, "Files skipped: %d\n", len(stats.Skipped))
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
