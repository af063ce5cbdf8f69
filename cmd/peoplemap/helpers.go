package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/config"
	"github.com/jonathan/peoplemap/internal/db"
	"github.com/jonathan/peoplemap/internal/normalize"
	"github.com/jonathan/peoplemap/internal/pipeline"
	"github.com/jonathan/peoplemap/internal/view"
)

// loadSettings reads config from the environment and --config, with exportPath
// (usually --in) taking precedence over any configured source.
func loadSettings(exportPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if exportPath != "" {
		cfg.ExportPath = exportPath
	}
	cfg.Verbose = cfg.Verbose || verbose
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSource returns a file source when an export is configured, otherwise the query client.
func newSource(cfg *config.Config) (cms.Source, error) {
	if cfg.ExportPath != "" {
		return cms.NewFileSource(cfg.ExportPath), nil
	}
	client, err := cms.NewClient(cms.ClientConfig{
		ProjectID:  cfg.ProjectID,
		Dataset:    cfg.Dataset,
		APIVersion: cfg.APIVersion,
		Token:      cfg.Token,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.FetchTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newNormalizer(cfg *config.Config) *normalize.Normalizer {
	return normalize.New(normalize.Options{
		PlaceholderImage:       cfg.PlaceholderImage,
		PlaceholderDescription: cfg.PlaceholderDescription,
		ProjectID:              cfg.ProjectID,
		Dataset:                cfg.Dataset,
	})
}

func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	src, err := newSource(cfg)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Source: src, Normalizer: newNormalizer(cfg)}, nil
}

// connectStore opens the snapshot database and makes sure its table exists.
func connectStore(ctx context.Context, databaseURL string) (*db.DB, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty or "-".
func writeJSON(path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonBytes = append(jsonBytes, '\n')

	if path == "" || path == "-" {
		_, err := os.Stdout.Write(jsonBytes)
		return err
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func failureView(err error) *view.FailureView {
	return view.Failure(pipeline.FailureMessage(err))
}
