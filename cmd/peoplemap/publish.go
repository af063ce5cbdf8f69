package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/peoplemap/internal/observability"
	"github.com/jonathan/peoplemap/internal/pipeline"
	"github.com/jonathan/peoplemap/internal/publish"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Build the people map and store it as a snapshot",
	Long:  "Run one full build and store the result in the snapshot database. Nothing is stored when the build fails.",
	RunE:  runPublish,
}

var (
	publishInput       string
	publishDatabaseURL string
	publishKeep        int
)

func init() {
	publishCmd.Flags().StringVarP(&publishInput, "in", "i", "", "Path to content export; defaults to the query API")
	publishCmd.Flags().StringVar(&publishDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	publishCmd.Flags().IntVar(&publishKeep, "keep", 0, "Delete all but the newest N snapshots after publishing (0 keeps everything)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings(publishInput)
	if err != nil {
		return err
	}
	if publishDatabaseURL != "" {
		cfg.DatabaseURL = publishDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL or use --db-url)")
	}
	if publishKeep < 0 {
		return fmt.Errorf("--keep must be non-negative")
	}

	ctx := context.Background()
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	database, err := connectStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	snapshot, err := publish.NewPublisher(opts, database).Retain(publishKeep).Publish(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish people map (%s): %w", pipeline.Kind(err), err)
	}

	observability.NewPrinter(os.Stdout).PrintSnapshot(snapshot.Summary())
	return nil
}
