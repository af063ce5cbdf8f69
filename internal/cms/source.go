// Package cms adapts the headless content store into raw person records.
package cms

import (
	"context"

	"github.com/jonathan/peoplemap/internal/types"
)

// Source returns the person documents matching a query, already filtered and ordered.
// Implementations do not retry; retry policy belongs to the caller.
type Source interface {
	FetchPeople(ctx context.Context, q Query) ([]types.PersonRecord, error)
}
