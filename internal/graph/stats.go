package graph

import "github.com/jonathan/peoplemap/internal/types"

// Stats summarizes a built graph.
type Stats struct {
	Nodes       int `json:"nodes"`
	Focal       int `json:"focal"`
	Edges       int `json:"edges"`
	MutualPairs int `json:"mutual_pairs"`
	Dangling    int `json:"dangling"`
	Isolated    int `json:"isolated"`
}

// Summarize counts nodes, edges, reciprocal pairs and people with no edges at all.
func Summarize(g *types.Graph) Stats {
	s := Stats{
		Nodes:    len(g.Nodes),
		Edges:    len(g.Edges),
		Dangling: len(g.Diagnostics),
	}

	touched := make(map[string]struct{}, len(g.Nodes))
	edges := EdgeSet(g)
	for _, e := range g.Edges {
		touched[e.Source] = struct{}{}
		touched[e.Target] = struct{}{}
		// Count each reciprocal pair once, from its lexically smaller end.
		if e.Source < e.Target && edges[types.Edge{Source: e.Target, Target: e.Source}] {
			s.MutualPairs++
		}
	}
	for _, n := range g.Nodes {
		if n.IsCandidate {
			s.Focal++
		}
		if _, ok := touched[n.ID]; !ok {
			s.Isolated++
		}
	}
	return s
}

// EdgeSet returns the edges of g as a set, for reciprocal lookups.
func EdgeSet(g *types.Graph) map[types.Edge]bool {
	set := make(map[types.Edge]bool, len(g.Edges))
	for _, e := range g.Edges {
		set[e] = true
	}
	return set
}
