package cms

import (
	"testing"

	"github.com/jonathan/peoplemap/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPeopleQuery_GROQ(t *testing.T) {
	q := DefaultPeopleQuery()
	assert.Equal(t,
		`*[_type == "person" && showOnMap == true] | order(isCandidate desc, order asc)`,
		q.GROQ())
}

func TestQuery_GROQWithoutFilters(t *testing.T) {
	assert.Equal(t, "*", Query{}.GROQ())
	assert.Equal(t, "* | order(name asc)", Query{Order: []OrderField{{Field: "name"}}}.GROQ())
}

func TestQuery_Matches(t *testing.T) {
	q := DefaultPeopleQuery()

	assert.True(t, q.Matches(types.PersonRecord{"_type": "person", "showOnMap": true}))
	assert.False(t, q.Matches(types.PersonRecord{"_type": "person", "showOnMap": false}))
	assert.False(t, q.Matches(types.PersonRecord{"_type": "person"}))
	assert.False(t, q.Matches(types.PersonRecord{"_type": "policy", "showOnMap": true}))
	assert.True(t, Query{}.Matches(types.PersonRecord{}))
}

func TestQuery_ApplyOrdersCandidateFirstThenOrder(t *testing.T) {
	records := []types.PersonRecord{
		{"_id": "a", "_type": "person", "showOnMap": true, "order": int64(2)},
		{"_id": "b", "_type": "person", "showOnMap": true, "order": int64(1)},
		{"_id": "c", "_type": "person", "showOnMap": true, "isCandidate": true, "order": int64(5)},
		{"_id": "hidden", "_type": "person", "showOnMap": false, "isCandidate": true},
		{"_id": "d", "_type": "person", "showOnMap": true, "order": 1.0},
	}

	out := DefaultPeopleQuery().Apply(records)

	ids := make([]string, len(out))
	for i, r := range out {
		ids[i] = r.ID()
	}
	assert.Equal(t, []string{"c", "b", "d", "a"}, ids)
	assert.Len(t, records, 5, "input must not be modified")
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, 0, compareValues(nil, 0))
	assert.Equal(t, 1, compareValues(true, false))
	assert.Equal(t, -1, compareValues(int64(1), 2.5))
	assert.Equal(t, -1, compareValues("alpha", "beta"))
}
