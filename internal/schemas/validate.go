// Package schemas provides JSON Schema validation for content-source payloads.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed json/*.schema.json
var files embed.FS

// Names of the embedded schemas.
const (
	QueryResult  = "query_result"
	PersonExport = "person_export"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Schema))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Source returns the raw text of an embedded schema.
func Source(name string) ([]byte, error) {
	data, err := files.ReadFile("json/" + name + ".schema.json")
	if err != nil {
		return nil, &SchemaLoadError{Name: name, Message: "schema not found", Cause: err}
	}
	return data, nil
}

// ValidateDocument validates an already-decoded JSON value against a named schema.
func ValidateDocument(name string, doc any) error {
	return validate(name, gojsonschema.NewGoLoader(doc))
}

// ValidateJSON validates raw JSON bytes against a named schema.
func ValidateJSON(name string, data []byte) error {
	return validate(name, gojsonschema.NewBytesLoader(data))
}

func validate(name string, documentLoader gojsonschema.JSONLoader) error {
	schemaText, err := Source(name)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaText), documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Name:    name,
			Message: "validation could not run",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
