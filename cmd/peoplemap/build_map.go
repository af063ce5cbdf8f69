package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/peoplemap/internal/observability"
	"github.com/jonathan/peoplemap/internal/pipeline"
	"github.com/spf13/cobra"
)

var buildMapCmd = &cobra.Command{
	Use:   "build-map",
	Short: "Build the people map render model",
	Long: `Fetch person documents (from the query API, or from an export with --in), normalize them,
build the relation graph and write the map view JSON. On a fatal error the failure view is written
instead and the command exits non-zero.`,
	RunE: runBuildMap,
}

var (
	buildMapInput       string
	buildMapOutput      string
	buildMapDiagnostics bool
)

func init() {
	buildMapCmd.Flags().StringVarP(&buildMapInput, "in", "i", "", "Path to content export (JSON array or NDJSON); defaults to the query API")
	buildMapCmd.Flags().StringVarP(&buildMapOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	buildMapCmd.Flags().BoolVar(&buildMapDiagnostics, "diagnostics", false, "Print statistics and dangling relations to stderr")
	rootCmd.AddCommand(buildMapCmd)
}

func runBuildMap(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings(buildMapInput)
	if err != nil {
		return err
	}
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stderr)
	if cfg.Verbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Step, e.Message)
		}
	}

	result, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		if writeErr := writeJSON(buildMapOutput, failureView(err)); writeErr != nil {
			return writeErr
		}
		return fmt.Errorf("failed to build people map (%s): %w", pipeline.Kind(err), err)
	}

	if cfg.Verbose {
		printer.PrintPeople(result.Graph.Nodes)
	}
	if cfg.Verbose || buildMapDiagnostics {
		printer.PrintGraphSummary(result.Stats)
		printer.PrintDiagnostics(result.Graph.Diagnostics)
	}

	if err := writeJSON(buildMapOutput, result.View); err != nil {
		return err
	}
	if buildMapOutput != "" && buildMapOutput != "-" {
		fmt.Fprintf(os.Stderr, "Wrote map with %d nodes and %d edges to %s\n", len(result.View.Nodes), len(result.View.Edges), buildMapOutput)
	}
	return nil
}
