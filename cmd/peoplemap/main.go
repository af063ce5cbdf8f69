// Package main provides the entry point for the peoplemap CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/peoplemap/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "peoplemap",
	Short: "Campaign people-relationship map builder",
	Long:  "peoplemap fetches person documents from the content store, normalizes them, resolves their relations into a graph and serves the render model for the site's people map.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Init(logger.Options{Debug: verbose})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
