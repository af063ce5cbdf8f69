// Package server provides the HTTP API for the people map.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/peoplemap/internal/pipeline"
	"github.com/jonathan/peoplemap/internal/publish"
)

// ErrNotFound indicates the requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Content source outages map to 503; bad content from the source maps to 502.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		notFound   *ErrNotFound
		validation *ErrValidation
		store      *publish.StoreError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &store):
		return http.StatusInternalServerError
	}

	switch pipeline.Kind(err) {
	case pipeline.KindSourceUnavailable:
		return http.StatusServiceUnavailable
	case pipeline.KindMalformedResponse, pipeline.KindValidation, pipeline.KindDuplicateIdentifier:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
