package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/observability"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize person documents from a content export",
	Long:  "Read a content export, apply the people query and write the normalized people JSON. Fails on the first invalid record.",
	RunE:  runNormalize,
}

var (
	normalizeInput         string
	normalizeOutput        string
	normalizeIncludeHidden bool
)

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInput, "in", "i", "", "Path to content export (JSON array or NDJSON)")
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	normalizeCmd.Flags().BoolVar(&normalizeIncludeHidden, "include-hidden", false, "Include people not flagged for the map")

	if err := normalizeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings(normalizeInput)
	if err != nil {
		return err
	}

	q := cms.DefaultPeopleQuery()
	if normalizeIncludeHidden {
		q.VisibleOnly = false
	}

	records, err := cms.NewFileSource(cfg.ExportPath).FetchPeople(context.Background(), q)
	if err != nil {
		return err
	}

	people, err := newNormalizer(cfg).NormalizeAll(records)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintPeople(people)
	}
	return writeJSON(normalizeOutput, people)
}
