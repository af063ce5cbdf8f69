//nolint:revive // types is a standard Go package name pattern
package types

// Edge is a directed relation between two people, stored as identifiers only.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DanglingRef records a relation that points at a person missing from the fetched set.
type DanglingRef struct {
	From    string `json:"from"`
	Missing string `json:"missing"`
}

// Graph is the people map for a single fetch cycle. It is never mutated after Build returns.
type Graph struct {
	// Nodes are ordered candidate-first, then by display order ascending.
	Nodes       []NormalizedPerson `json:"nodes"`
	Edges       []Edge             `json:"edges"`
	Diagnostics []DanglingRef      `json:"diagnostics"`
}

// NodeIDs returns node identifiers in graph order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}
