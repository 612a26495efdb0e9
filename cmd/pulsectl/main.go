package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pulseboard/social-listener/internal/app"
	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	timeout    time.Duration
	archiveDir string
)

// rootCmd is the operator entry point
var rootCmd = &cobra.Command{
	Use:   "pulsectl",
	Short: "Operate the social listening pipeline",
	Long: `pulsectl runs pipeline stages on demand and inspects their results.

It reads the same environment (or .env file) as the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			logrus.Debug("No .env file found, using environment variables")
		}
		logrus.SetLevel(logrus.WarnLevel)
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&archiveDir, "archive-dir", "", "Archive raw output and digests to this directory instead of Azure storage")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsAckCmd)
	sourcesCmd.AddCommand(sourcesCheckCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveGetCmd)

	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(archiveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// commandContext bounds a command by --timeout
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

// loadApp wires the full application, preferring --archive-dir over Azure storage
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if archiveDir != "" {
		cfg.StorageAccount = ""
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if archiveDir != "" {
		archive, err := storage.NewLocalStorage(archiveDir)
		if err != nil {
			application.Close()
			return nil, err
		}
		application.Archive = archive
		application.Pipeline.WithArchive(archive)
	}

	return application, nil
}

// openArchive returns the configured archive without connecting to the database
func openArchive(ctx context.Context) (storage.StorageInterface, error) {
	if archiveDir != "" {
		return storage.NewLocalStorage(archiveDir)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.StorageAccount == "" {
		return nil, fmt.Errorf("no archive configured: set AZURE_STORAGE_ACCOUNT or --archive-dir")
	}
	return storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
}
