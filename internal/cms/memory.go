package cms

import (
	"context"

	"github.com/jonathan/peoplemap/internal/types"
)

// MemorySource serves a fixed set of documents, applying queries locally.
type MemorySource struct {
	Records []types.PersonRecord
	// Err, when set, is returned by every fetch.
	Err error
}

// NewMemorySource returns a source over the given documents.
func NewMemorySource(records ...types.PersonRecord) *MemorySource {
	return &MemorySource{Records: records}
}

// FetchPeople implements Source.
func (m *MemorySource) FetchPeople(ctx context.Context, q Query) ([]types.PersonRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SourceUnavailableError{Message: "fetch abandoned", Cause: err}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return q.Apply(m.Records), nil
}
