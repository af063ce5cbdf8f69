package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jonathan/peoplemap/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(id string, candidate bool, order int, relations ...string) types.NormalizedPerson {
	if relations == nil {
		relations = []string{}
	}
	return types.NormalizedPerson{
		ID:          id,
		Name:        "Name " + id,
		IsCandidate: candidate,
		Order:       order,
		Relations:   relations,
	}
}

func TestBuild_CandidateWithRelation(t *testing.T) {
	g, err := Build([]types.NormalizedPerson{
		person("p1", true, 1, "p2"),
		person("p2", false, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2"}, g.NodeIDs())
	assert.Equal(t, []types.Edge{{Source: "p1", Target: "p2"}}, g.Edges)
	assert.Empty(t, g.Diagnostics)
}

func TestBuild_DanglingReference(t *testing.T) {
	g, err := Build([]types.NormalizedPerson{person("p1", false, 0, "p9")})
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, g.NodeIDs())
	assert.Empty(t, g.Edges)
	assert.Equal(t, []types.DanglingRef{{From: "p1", Missing: "p9"}}, g.Diagnostics)
}

func TestBuild_DanglingNeverTouchesEdges(t *testing.T) {
	g, err := Build([]types.NormalizedPerson{
		person("p1", false, 0, "X", "p2"),
		person("p2", false, 1, "p1"),
	})
	require.NoError(t, err)

	for _, e := range g.Edges {
		assert.NotEqual(t, "X", e.Source)
		assert.NotEqual(t, "X", e.Target)
	}
	count := 0
	for _, d := range g.Diagnostics {
		if d.Missing == "X" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuild_DuplicateIdentifier(t *testing.T) {
	g, err := Build([]types.NormalizedPerson{
		person("p1", true, 0),
		person("p2", false, 0),
		person("p1", false, 3),
	})
	require.Error(t, err)
	assert.Nil(t, g)

	var dup *DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "p1", dup.ID)
	assert.Equal(t, 0, dup.First)
	assert.Equal(t, 2, dup.Second)
}

func TestBuild_OrderingCandidateFirstThenOrder(t *testing.T) {
	g, err := Build([]types.NormalizedPerson{
		person("staff-b", false, 2),
		person("staff-a", false, 1),
		person("cand-2", true, 9),
		person("staff-c", false, 1),
		person("cand-1", true, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"cand-1", "cand-2", "staff-a", "staff-c", "staff-b"}, g.NodeIDs())
}

func TestBuild_KeepsBidirectionalPairs(t *testing.T) {
	g, err := Build([]types.NormalizedPerson{
		person("a", false, 0, "b"),
		person("b", false, 1, "a"),
	})
	require.NoError(t, err)

	assert.Equal(t, []types.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	}, g.Edges)
}

func TestBuild_EdgeOrderFollowsNodeThenRelationOrder(t *testing.T) {
	g, err := Build([]types.NormalizedPerson{
		person("s", false, 5, "c", "a"),
		person("c", true, 0, "s", "a"),
		person("a", false, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, []types.Edge{
		{Source: "c", Target: "s"},
		{Source: "c", Target: "a"},
		{Source: "s", Target: "c"},
		{Source: "s", Target: "a"},
	}, g.Edges)
}

func TestBuild_DoesNotModifyInput(t *testing.T) {
	input := []types.NormalizedPerson{
		person("b", false, 2),
		person("a", true, 1),
	}

	_, err := Build(input)
	require.NoError(t, err)
	assert.Equal(t, "b", input[0].ID)
	assert.Equal(t, "a", input[1].ID)
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.NotNil(t, g.Edges)
	assert.NotNil(t, g.Diagnostics)
}

func TestBuild_Deterministic(t *testing.T) {
	people := randomPeople(rand.New(rand.NewSource(7)), 40)

	first, err := Build(people)
	require.NoError(t, err)
	second, err := Build(people)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		people := randomPeople(rng, 1+rng.Intn(30))

		g, err := Build(people)
		require.NoError(t, err)

		// Exactly one node per input record.
		require.Len(t, g.Nodes, len(people))
		present := make(map[string]bool, len(people))
		for _, p := range people {
			present[p.ID] = true
		}
		for _, n := range g.Nodes {
			assert.True(t, present[n.ID])
		}

		// Edges only between present identifiers.
		for _, e := range g.Edges {
			assert.True(t, present[e.Source], "edge source %s", e.Source)
			assert.True(t, present[e.Target], "edge target %s", e.Target)
		}

		// Candidate-first, then ascending order.
		for i := 1; i < len(g.Nodes); i++ {
			prev, cur := g.Nodes[i-1], g.Nodes[i]
			if prev.IsCandidate == cur.IsCandidate {
				assert.LessOrEqual(t, prev.Order, cur.Order)
			} else {
				assert.True(t, prev.IsCandidate, "non-candidate %s before candidate %s", prev.ID, cur.ID)
			}
		}

		// Every relation is either an edge or a diagnostic, never both.
		total := 0
		for _, p := range people {
			total += len(p.Relations)
		}
		assert.Equal(t, total, len(g.Edges)+len(g.Diagnostics))
	}
}

func randomPeople(rng *rand.Rand, n int) []types.NormalizedPerson {
	people := make([]types.NormalizedPerson, n)
	for i := range people {
		var relations []string
		seen := map[string]bool{}
		for r := rng.Intn(4); r > 0; r-- {
			// Some targets fall outside the set to produce dangling references.
			target := fmt.Sprintf("p%d", rng.Intn(n+3))
			if !seen[target] {
				seen[target] = true
				relations = append(relations, target)
			}
		}
		people[i] = person(fmt.Sprintf("p%d", i), rng.Intn(5) == 0, rng.Intn(4), relations...)
	}
	return people
}
