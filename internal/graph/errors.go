package graph

import "fmt"

// DuplicateIdentifierError means two fetched people share an identifier.
// This is an upstream data-integrity problem and is never resolved by merging.
type DuplicateIdentifierError struct {
	ID     string
	First  int // input position of the first occurrence
	Second int // input position of the clashing occurrence
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate identifier %q at positions %d and %d", e.ID, e.First, e.Second)
}
