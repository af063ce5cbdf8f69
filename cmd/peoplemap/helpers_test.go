package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/config"
	"github.com/jonathan/peoplemap/internal/pipeline"
	"github.com/jonathan/peoplemap/internal/schemas"
	"github.com/jonathan/peoplemap/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validExport = filepath.Join("..", "..", "testdata", "valid", "people_export.json")

func TestNewSource_ExportPath(t *testing.T) {
	src, err := newSource(&config.Config{ExportPath: validExport})
	require.NoError(t, err)
	assert.IsType(t, &cms.FileSource{}, src)
}

func TestNewSource_QueryClient(t *testing.T) {
	src, err := newSource(&config.Config{ProjectID: "abc123", Dataset: "production"})
	require.NoError(t, err)
	assert.IsType(t, &cms.Client{}, src)
}

func TestNewSource_InvalidClientConfig(t *testing.T) {
	_, err := newSource(&config.Config{ProjectID: "abc123"})
	assert.Error(t, err)
}

func TestPipelineOptions_BuildsFromExport(t *testing.T) {
	opts, err := pipelineOptions(&config.Config{ExportPath: validExport})
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"person-kim", "person-lee", "person-park"}, result.Graph.NodeIDs())
	assert.Equal(t, []types.Edge{
		{Source: "person-kim", Target: "person-lee"},
		{Source: "person-kim", Target: "person-park"},
		{Source: "person-lee", Target: "person-kim"},
	}, result.Graph.Edges)
	assert.Equal(t, []types.DanglingRef{{From: "person-park", Missing: "person-choi"}}, result.Graph.Diagnostics)
	assert.Equal(t, "Professor of urban planning.", result.Graph.Nodes[2].Description)
	assert.Equal(t, types.PlaceholderDescription, result.Graph.Nodes[1].Description)
}

func TestPipelineOptions_NDJSONExport(t *testing.T) {
	opts, err := pipelineOptions(&config.Config{
		ExportPath: filepath.Join("..", "..", "testdata", "valid", "people_export.ndjson"),
	})
	require.NoError(t, err)

	result, err := pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, result.View.Nodes, 2)
	assert.Len(t, result.View.Edges, 1)
}

func TestPipelineOptions_InvalidExportFails(t *testing.T) {
	tests := []struct {
		file string
		kind string
	}{
		{file: "missing_name.json", kind: pipeline.KindValidation},
		{file: "duplicate_id.json", kind: pipeline.KindDuplicateIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			opts, err := pipelineOptions(&config.Config{
				ExportPath: filepath.Join("..", "..", "testdata", "invalid", tt.file),
			})
			require.NoError(t, err)

			_, err = pipeline.Run(context.Background(), opts)
			require.Error(t, err)
			assert.Equal(t, tt.kind, pipeline.Kind(err))

			failure := failureView(err)
			assert.Equal(t, "unavailable", failure.Status)
			assert.NotEmpty(t, failure.Message)
		})
	}
}

func TestNewNormalizer_UsesConfiguredPlaceholders(t *testing.T) {
	n := newNormalizer(&config.Config{PlaceholderImage: "/static/blank.svg", PlaceholderDescription: "TBA"})

	p, err := n.Normalize(types.PersonRecord{"_id": "p1", "name": "Kim"})
	require.NoError(t, err)
	assert.Equal(t, "/static/blank.svg", p.ImageURL)
	assert.Equal(t, "TBA", p.Description)
}

func TestWriteJSON_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, writeJSON(path, map[string]int{"nodes": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 3, got["nodes"])
}

func TestWriteJSON_BadPath(t *testing.T) {
	err := writeJSON(filepath.Join(t.TempDir(), "missing", "out.json"), []int{})
	assert.Error(t, err)
}

func TestValidateExport_JSONArrayAndNDJSON(t *testing.T) {
	for _, name := range []string{"people_export.json", "people_export.ndjson"} {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "valid", name))
			require.NoError(t, err)

			count, err := validateExport(data)
			require.NoError(t, err)
			assert.Positive(t, count)
		})
	}
}

func TestValidateExport_ReportsFieldErrors(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "invalid", "missing_name.json"))
	require.NoError(t, err)

	_, err = validateExport(data)
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestValidateExport_NonObjectItemIsSchemaError(t *testing.T) {
	_, err := validateExport([]byte(`[{"_id": "p1", "name": "Kim"}, 42]`))

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
