package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ocracle/ocracle/internal/reporting"
)

var (
	reportConfigPath string
	reportOutput     string
	reportFormat     string
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [results-dir]",
		Short: "Render the model leaderboard",
		Long: `Render a leaderboard from manifest.json and the per-image results it lists.
Models are ranked by mean accuracy with standard deviation and a bootstrap 95%
confidence interval. Adjacent models whose paired accuracy difference is
significant are called out.

Without --output the Markdown is printed to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: reportCommandE,
	}

	cmd.Flags().StringVarP(&reportConfigPath, "config", "c", "", "Path to ocracle.yaml")
	cmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the leaderboard to this file")
	cmd.Flags().StringVar(&reportFormat, "format", "", "Output format: markdown, html (default: from --output extension, else markdown)")

	return cmd
}

func reportCommandE(cmd *cobra.Command, args []string) error {
	root, err := resultsRoot(reportConfigPath, args)
	if err != nil {
		return err
	}

	format := reportFormat
	if format == "" {
		format = formatFromPath(reportOutput)
	}
	data, err := renderLeaderboard(root, format)
	if err != nil {
		return err
	}

	if reportOutput == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(reportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Leaderboard saved to: %s\n", reportOutput)
	return nil
}

func formatFromPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".html", ".htm":
		return "html"
	default:
		return "markdown"
	}
}

func renderLeaderboard(root, format string) ([]byte, error) {
	lb, err := reporting.BuildLeaderboard(root)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	switch format {
	case "markdown", "md":
		err = reporting.RenderMarkdown(&buf, lb)
	case "html":
		err = reporting.RenderHTML(&buf, lb)
	default:
		return nil, fmt.Errorf("unknown report format: %s (supported: markdown, html)", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeLeaderboard renders the leaderboard for root into path, choosing the format by extension.
func writeLeaderboard(root, path string) error {
	data, err := renderLeaderboard(root, formatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
