package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/ocracle/ocracle/internal/execution"
)

var modelsConfigPath string

func newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		Long: `List every model in ocracle.yaml with its provider, image encoding, and
whether its credential is present in the environment.`,
		Args: cobra.NoArgs,
		RunE: modelsCommandE,
	}
	cmd.Flags().StringVarP(&modelsConfigPath, "config", "c", "", "Path to ocracle.yaml")
	return cmd
}

func modelsCommandE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(modelsConfigPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(cfg.Models) == 0 {
		fmt.Fprintln(out, "No models configured.")
		return nil
	}

	rows := [][]string{{"Name", "Provider", "Model ID", "Encoding", "Enabled", "Credential"}}
	for _, m := range cfg.Models {
		h := m.Handle()
		cred := "not needed"
		if execution.RequiresAPIKey(h.Provider) {
			switch {
			case h.APIKeyEnv == "":
				cred = "no api_key_env"
			case os.Getenv(h.APIKeyEnv) != "":
				cred = h.APIKeyEnv + " set"
			default:
				cred = h.APIKeyEnv + " missing"
			}
		}
		enabled := "no"
		if m.IsEnabled() {
			enabled = "yes"
		}
		rows = append(rows, []string{h.Key(), string(h.Provider), h.ModelID, string(h.Encoding), enabled, cred})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = padRight(cell, widths[i])
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return nil
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
