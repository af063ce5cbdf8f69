package normalize

import "fmt"

// ValidationError reports a record missing a required field or holding an unusable value in one.
type ValidationError struct {
	Field   string // "id" or "name"
	Message string
	// Index is the record's position in the fetched batch, or -1 when normalized alone.
	Index    int
	RecordID string
}

func (e *ValidationError) Error() string {
	where := ""
	switch {
	case e.RecordID != "":
		where = fmt.Sprintf(" (record %q)", e.RecordID)
	case e.Index >= 0:
		where = fmt.Sprintf(" (record #%d)", e.Index)
	}
	return fmt.Sprintf("validation error: %s %s%s", e.Field, e.Message, where)
}
