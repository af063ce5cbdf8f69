package cms

import "fmt"

// SourceUnavailableError means the content store could not be reached or refused the request.
type SourceUnavailableError struct {
	Message string
	Cause   error
}

func (e *SourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("content source unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("content source unavailable: %s", e.Message)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError means the content store answered with something other than
// a sequence of document objects.
type MalformedResponseError struct {
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed content response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed content response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
