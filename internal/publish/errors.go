package publish

import "fmt"

// StoreError represents a failure to persist or read a snapshot.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("snapshot store: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("snapshot store: %s", e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
