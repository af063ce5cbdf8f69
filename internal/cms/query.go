package cms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/peoplemap/internal/types"
	"github.com/spf13/cast"
)

// PersonType is the document type of people shown on the map.
const PersonType = "person"

// OrderField is one key of a sort specification.
type OrderField struct {
	Field string
	Desc  bool
}

// Query is a declarative filter and sort over person documents.
type Query struct {
	Type        string
	VisibleOnly bool
	Order       []OrderField
}

// DefaultPeopleQuery selects people visible on the map, candidate first, then by display order.
func DefaultPeopleQuery() Query {
	return Query{
		Type:        PersonType,
		VisibleOnly: true,
		Order: []OrderField{
			{Field: types.FieldIsCandidate, Desc: true},
			{Field: types.FieldOrder},
		},
	}
}

// GROQ renders the query in the content store's query language.
func (q Query) GROQ() string {
	var filters []string
	if q.Type != "" {
		filters = append(filters, fmt.Sprintf("%s == %q", types.FieldType, q.Type))
	}
	if q.VisibleOnly {
		filters = append(filters, types.FieldShowOnMap+" == true")
	}

	var sb strings.Builder
	sb.WriteString("*")
	if len(filters) > 0 {
		sb.WriteString("[" + strings.Join(filters, " && ") + "]")
	}
	if len(q.Order) > 0 {
		keys := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			keys[i] = o.Field + " " + dir
		}
		sb.WriteString(" | order(" + strings.Join(keys, ", ") + ")")
	}
	return sb.String()
}

// Matches reports whether a record passes the query's filter.
func (q Query) Matches(r types.PersonRecord) bool {
	if q.Type != "" {
		if t, _ := r[types.FieldType].(string); t != q.Type {
			return false
		}
	}
	if q.VisibleOnly && !cast.ToBool(r[types.FieldShowOnMap]) {
		return false
	}
	return true
}

// Apply filters and sorts records the way the content store would.
// The input slice is not modified.
func (q Query) Apply(records []types.PersonRecord) []types.PersonRecord {
	out := make([]types.PersonRecord, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.Order {
			c := compareValues(out[i][o.Field], out[j][o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

// compareValues orders numbers and booleans numerically and everything else as text.
// Missing values compare as zero.
func compareValues(a, b any) int {
	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}
