package pipeline

import (
	"errors"

	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/graph"
	"github.com/jonathan/peoplemap/internal/normalize"
)

// Failure kinds, one per fatal error class.
const (
	KindSourceUnavailable   = "source_unavailable"
	KindMalformedResponse   = "malformed_response"
	KindValidation          = "validation_error"
	KindDuplicateIdentifier = "duplicate_identifier"
	KindUnknown             = "unknown"
)

// Kind classifies a fatal run error.
func Kind(err error) string {
	var (
		unavailable *cms.SourceUnavailableError
		malformed   *cms.MalformedResponseError
		invalid     *normalize.ValidationError
		duplicate   *graph.DuplicateIdentifierError
	)
	switch {
	case errors.As(err, &unavailable):
		return KindSourceUnavailable
	case errors.As(err, &malformed):
		return KindMalformedResponse
	case errors.As(err, &invalid):
		return KindValidation
	case errors.As(err, &duplicate):
		return KindDuplicateIdentifier
	default:
		return KindUnknown
	}
}

// FailureMessage is the single human-readable text shown in place of the map.
// Details stay in the logs.
func FailureMessage(err error) string {
	switch Kind(err) {
	case KindSourceUnavailable:
		return "The people map is temporarily unavailable. Please try again shortly."
	case KindMalformedResponse, KindValidation, KindDuplicateIdentifier:
		return "The people map could not be displayed because its content is being updated."
	default:
		return "The people map could not be displayed."
	}
}
