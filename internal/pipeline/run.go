// Package pipeline runs one fetch-normalize-build-project cycle for the people map.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/peoplemap/internal/cms"
	"github.com/jonathan/peoplemap/internal/graph"
	"github.com/jonathan/peoplemap/internal/logger"
	"github.com/jonathan/peoplemap/internal/normalize"
	"github.com/jonathan/peoplemap/internal/types"
	"github.com/jonathan/peoplemap/internal/view"
)

// Step names reported through ProgressEvent.
const (
	StepFetch     = "fetch"
	StepNormalize = "normalize"
	StepBuild     = "build"
	StepProject   = "project"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options configures a run.
type Options struct {
	Source     cms.Source
	Normalizer *normalize.Normalizer
	// Query defaults to cms.DefaultPeopleQuery.
	Query      *cms.Query
	OnProgress ProgressCallback
}

// Result is the immutable output of one complete cycle.
type Result struct {
	People  []types.NormalizedPerson
	Graph   *types.Graph
	View    *view.MapView
	Stats   graph.Stats
	BuiltAt time.Time
}

// Run fetches people, normalizes every record, builds the graph and projects it.
// Any fatal error aborts the cycle and no partial result is returned. Dangling
// relations are logged and kept in Graph.Diagnostics.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("pipeline: source is required")
	}
	n := opts.Normalizer
	if n == nil {
		n = normalize.New(normalize.DefaultOptions())
	}
	q := cms.DefaultPeopleQuery()
	if opts.Query != nil {
		q = *opts.Query
	}
	progress := func(step, format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		logger.Debug(msg, "step", step)
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Step: step, Message: msg})
		}
	}

	start := time.Now()
	records, err := opts.Source.FetchPeople(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch people: %w", err)
	}
	progress(StepFetch, "fetched %d records", len(records))

	people, err := n.NormalizeAll(records)
	if err != nil {
		return nil, fmt.Errorf("normalize people: %w", err)
	}
	progress(StepNormalize, "normalized %d people", len(people))

	g, err := graph.Build(people)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	for _, d := range g.Diagnostics {
		logger.Warn("dangling relation", "from", d.From, "missing", d.Missing)
	}
	logger.Debug("graph node order", "ids", g.NodeIDs())
	progress(StepBuild, "built graph with %d nodes, %d edges, %d dangling", len(g.Nodes), len(g.Edges), len(g.Diagnostics))

	v := view.Project(g)
	progress(StepProject, "projected %d nodes", len(v.Nodes))

	stats := graph.Summarize(g)
	logger.Info("people map built",
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"dangling", stats.Dangling,
		"elapsed", time.Since(start))

	return &Result{
		People:  people,
		Graph:   g,
		View:    v,
		Stats:   stats,
		BuiltAt: time.Now().UTC(),
	}, nil
}
