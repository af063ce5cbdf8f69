// Package graph resolves relation references between people into a directed graph.
package graph

import (
	"sort"

	"github.com/jonathan/peoplemap/internal/types"
)

// Build orders the people, indexes them by identifier, and emits an edge for every
// relation whose target is present. Relations to absent people are returned as
// diagnostics instead of edges. A duplicate identifier fails the build with no graph.
//
// Edges follow node order, then each node's relation order, so identical input always
// yields identical output. Reciprocal relations are kept as two edges.
func Build(people []types.NormalizedPerson) (*types.Graph, error) {
	index := make(map[string]int, len(people))
	for i, p := range people {
		if first, dup := index[p.ID]; dup {
			return nil, &DuplicateIdentifierError{ID: p.ID, First: first, Second: i}
		}
		index[p.ID] = i
	}

	nodes := make([]types.NormalizedPerson, len(people))
	copy(nodes, people)
	SortNodes(nodes)

	g := &types.Graph{
		Nodes:       nodes,
		Edges:       []types.Edge{},
		Diagnostics: []types.DanglingRef{},
	}
	for _, n := range nodes {
		for _, target := range n.Relations {
			if _, ok := index[target]; !ok {
				g.Diagnostics = append(g.Diagnostics, types.DanglingRef{From: n.ID, Missing: target})
				continue
			}
			g.Edges = append(g.Edges, types.Edge{Source: n.ID, Target: target})
		}
	}

	return g, nil
}

// SortNodes orders people candidate-first, then by display order ascending.
// Ties keep their input order.
func SortNodes(nodes []types.NormalizedPerson) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].IsCandidate != nodes[j].IsCandidate {
			return nodes[i].IsCandidate
		}
		return nodes[i].Order < nodes[j].Order
	})
}
