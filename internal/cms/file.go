package cms

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/peoplemap/internal/types"
)

// FileSource reads documents from a content export on disk.
type FileSource struct {
	Path string
}

// NewFileSource returns a source backed by the export at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// FetchPeople implements Source. The file is re-read on every call.
func (f *FileSource) FetchPeople(ctx context.Context, q Query) ([]types.PersonRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SourceUnavailableError{Message: "fetch abandoned", Cause: err}
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &SourceUnavailableError{Message: fmt.Sprintf("failed to read export %s", f.Path), Cause: err}
	}

	records, err := DecodeExport(data)
	if err != nil {
		return nil, err
	}
	return q.Apply(records), nil
}
