// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/peoplemap/internal/db"
	"github.com/jonathan/peoplemap/internal/graph"
	"github.com/jonathan/peoplemap/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPeople outputs the first normalized people in display order.
func (p *Printer) PrintPeople(people []types.NormalizedPerson) {
	if len(people) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total people: %d\n\n", len(people)))

	count := min(len(people), maxItemsToShow)
	for i := 0; i < count; i++ {
		person := people[i]
		marker := " "
		if person.IsCandidate {
			marker = "★"
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s)\n", marker, person.Name, person.ID))
		if person.Role != "" {
			sb.WriteString(fmt.Sprintf("    Role: %s\n", person.Role))
		}
		sb.WriteString(fmt.Sprintf("    Relations: %d\n", len(person.Relations)))
	}
	if len(people) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(people)-maxItemsToShow))
	}

	p.printBox("NORMALIZED PEOPLE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGraphSummary outputs node, edge and reciprocity counts for a built map.
func (p *Printer) PrintGraphSummary(stats graph.Stats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Nodes:        %d\n", stats.Nodes))
	sb.WriteString(fmt.Sprintf("Focal:        %d\n", stats.Focal))
	sb.WriteString(fmt.Sprintf("Edges:        %d\n", stats.Edges))
	sb.WriteString(fmt.Sprintf("Mutual pairs: %d\n", stats.MutualPairs))
	sb.WriteString(fmt.Sprintf("Isolated:     %d\n", stats.Isolated))
	sb.WriteString(fmt.Sprintf("Dangling:     %d", stats.Dangling))

	p.printBox("PEOPLE MAP", sb.String())
}

// PrintDiagnostics outputs dangling relations found while building the map.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDiagnostics(diagnostics []types.DanglingRef) {
	if len(diagnostics) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO DANGLING RELATIONS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d dangling relations:\n\n", len(diagnostics)))

	count := min(len(diagnostics), maxItemsToShow*2)
	for i := 0; i < count; i++ {
		d := diagnostics[i]
		sb.WriteString(fmt.Sprintf("⚠ %s → %s\n", d.From, d.Missing))
	}
	if len(diagnostics) > count {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(diagnostics)-count))
	}

	p.printBox("DANGLING RELATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSnapshot outputs the identity and counts of a stored snapshot.
func (p *Printer) PrintSnapshot(summary db.SnapshotSummary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", summary.ID))
	if !summary.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Created:  %s\n", summary.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	}
	sb.WriteString(fmt.Sprintf("Nodes:    %d\n", summary.NodeCount))
	sb.WriteString(fmt.Sprintf("Edges:    %d\n", summary.EdgeCount))
	sb.WriteString(fmt.Sprintf("Dangling: %d", summary.DanglingCount))

	p.printBox("PUBLISHED SNAPSHOT", sb.String())
}
