// Package view projects a people graph into the shape the map renderer consumes.
package view

import (
	"github.com/jonathan/peoplemap/internal/graph"
	"github.com/jonathan/peoplemap/internal/types"
)

// NodeView is one person as drawn on the map.
type NodeView struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Role     string  `json:"role,omitempty"`
	ImageURL string  `json:"image_url"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Focal    bool    `json:"focal"`
}

// EdgeView is one connection line. Mutual is set when the reverse relation also exists.
type EdgeView struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Mutual bool   `json:"mutual"`
}

// MapView is the complete render model for the people map.
type MapView struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// FailureView replaces the map when the pipeline failed fatally.
type FailureView struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusUnavailable is the FailureView status for every fatal pipeline error.
const StatusUnavailable = "unavailable"

// Project selects the rendering fields of every node and edge, preserving graph order.
func Project(g *types.Graph) *MapView {
	v := &MapView{
		Nodes: make([]NodeView, len(g.Nodes)),
		Edges: make([]EdgeView, len(g.Edges)),
	}

	for i, n := range g.Nodes {
		v.Nodes[i] = NodeView{
			ID:       n.ID,
			Label:    n.Name,
			Role:     n.Role,
			ImageURL: n.ImageURL,
			X:        n.Position.X,
			Y:        n.Position.Y,
			Focal:    n.IsCandidate,
		}
	}

	edges := graph.EdgeSet(g)
	for i, e := range g.Edges {
		v.Edges[i] = EdgeView{
			Source: e.Source,
			Target: e.Target,
			Mutual: edges[types.Edge{Source: e.Target, Target: e.Source}],
		}
	}

	return v
}

// Failure builds the single human-readable failure state shown in place of the map.
func Failure(message string) *FailureView {
	return &FailureView{Status: StatusUnavailable, Message: message}
}
