package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocracle",
		Short: "ocracle - OCR benchmark for vision-language models",
		Long: `ocracle benchmarks vision-language models and OCR engines on historical prints.

Each model transcribes sampled page images, every transcription is scored against
ground truth by character accuracy, WER and CER, and low-accuracy attempts are
retried. Results are merged into per-image files, folder summaries and a manifest
consumed by the dashboard.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newAggregateCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newModelsCommand())
	cmd.AddCommand(newDeleteModelCommand())
	cmd.AddCommand(newRenameModelCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
