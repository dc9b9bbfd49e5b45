package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/publish"
)

var (
	publishConfigPath  string
	publishAccountURL  string
	publishContainer   string
	publishPrefix      string
	publishGzip        bool
	publishConcurrency int
)

func newPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [results-dir]",
		Short: "Upload results to Azure Blob Storage",
		Long: `Upload every JSON file of the results tree to an Azure Blob Storage container,
preserving relative paths so the dashboard can load manifest.json from the
container root.

Authentication uses AZURE_STORAGE_CONNECTION_STRING when set, otherwise the
default Azure credential chain (environment, managed identity, Azure CLI).`,
		Args: cobra.MaximumNArgs(1),
		RunE: publishCommandE,
	}

	cmd.Flags().StringVarP(&publishConfigPath, "config", "c", "", "Path to ocracle.yaml")
	cmd.Flags().StringVar(&publishAccountURL, "account-url", "", "Storage account URL, e.g. https://<account>.blob.core.windows.net")
	cmd.Flags().StringVar(&publishContainer, "container", "", "Destination container")
	cmd.Flags().StringVar(&publishPrefix, "prefix", "", "Blob name prefix")
	cmd.Flags().BoolVar(&publishGzip, "gzip", false, "Compress uploads with Content-Encoding: gzip")
	cmd.Flags().IntVar(&publishConcurrency, "concurrency", publish.DefaultConcurrency, "Parallel uploads")

	return cmd
}

func publishCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(publishConfigPath)
	if err != nil {
		return err
	}
	root := cfg.ResultsDir()
	if len(args) > 0 {
		root = absOrSelf(args[0])
	}

	target := cfg.Publish
	if publishAccountURL != "" {
		target.AccountURL = publishAccountURL
	}
	if publishContainer != "" {
		target.Container = publishContainer
	}
	if publishPrefix != "" {
		target.Prefix = publishPrefix
	}
	gzip := target.Gzip != nil && *target.Gzip
	if cmd.Flags().Changed("gzip") {
		gzip = publishGzip
	}
	if target.Container == "" {
		return &models.ConfigurationError{Field: "publish.container", Reason: "set publish.container or pass --container"}
	}

	client, err := publish.NewAzureClient(target.AccountURL, os.Getenv(publish.ConnectionStringEnv))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p, err := publish.NewPublisher(client, target.Container,
		publish.WithPrefix(target.Prefix),
		publish.WithGzip(gzip),
		publish.WithConcurrency(publishConcurrency),
	)
	if err != nil {
		return err
	}

	uploads, err := p.Publish(cmd.Context(), root)
	if err != nil {
		return err
	}
	total := 0
	for _, u := range uploads {
		total += u.Bytes
	}
	fmt.Fprintf(out, "Published %d file(s), %d bytes, to container %s\n", len(uploads), total, target.Container)
	return nil
}
