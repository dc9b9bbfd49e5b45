package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ocracle/ocracle/internal/config"
	"github.com/ocracle/ocracle/internal/wizard"
)

var (
	initYes   bool
	initForce bool
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an ocracle.yaml",
		Long: `Create an ocracle.yaml in the given directory (default: current directory).

When stdin is a terminal a short wizard asks for the corpus location, sample
size, concurrency, accuracy threshold and which models to enable. Use --yes to
accept the defaults without prompting.

An existing ocracle.yaml is never overwritten unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initCommandE,
	}

	cmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing ocracle.yaml")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	target := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(target); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}

	spec := wizard.DefaultSpec()
	if !initYes && isTTY(cmd) {
		answered, err := wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout(), spec)
		if err != nil {
			return fmt.Errorf("wizard failed: %w", err)
		}
		spec = answered
	}

	content, err := wizard.GenerateConfigYAML(spec)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", config.FileName, err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", target) //nolint:errcheck
	fmt.Fprintf(out, "\nNext steps:\n") //nolint:errcheck
	fmt.Fprintf(out, "  1. Put images and their .gt.txt ground truth under %s\n", spec.SourceDir) //nolint:errcheck
	fmt.Fprintf(out, "  2. Export the API keys of the enabled models (or add them to .env)\n") //nolint:errcheck
	fmt.Fprintf(out, "  3. ocracle run --dry-run\n") //nolint:errcheck
	return nil
}

func isTTY(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
