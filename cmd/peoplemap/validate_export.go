package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/schemas"
	"github.com/spf13/cobra"
)

var validateExportCmd = &cobra.Command{
	Use:   "validate-export",
	Short: "Validate a content export against the person schema",
	Long:  "Check that every document in a content export (JSON array or NDJSON) has the fields and types a person record needs.",
	RunE:  runValidateExport,
}

var validateExportInput string

func init() {
	validateExportCmd.Flags().StringVarP(&validateExportInput, "in", "i", "", "Path to content export")

	if err := validateExportCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}

	rootCmd.AddCommand(validateExportCmd)
}

func runValidateExport(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(validateExportInput)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	count, err := validateExport(data)
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Validation failed: %d errors\n", len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				_, _ = fmt.Fprintf(os.Stderr, "  - %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("export does not match the person schema")
		}
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Validation passed: %d documents\n", count)
	return nil
}

// validateExport checks an export against the person schema and returns the document count.
// A JSON array is validated as raw bytes, so items the decoder would reject outright
// still get per-field schema errors. NDJSON is decoded line by line first.
func validateExport(data []byte) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := schemas.ValidateJSON(schemas.PersonExport, trimmed); err != nil {
			return 0, err
		}
		records, err := cms.DecodeExport(trimmed)
		if err != nil {
			return 0, err
		}
		return len(records), nil
	}

	records, err := cms.DecodeExport(data)
	if err != nil {
		return 0, err
	}
	if err := schemas.ValidateDocument(schemas.PersonExport, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
