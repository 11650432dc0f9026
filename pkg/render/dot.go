// Package render exports pipelines as Graphviz drawings.
//
// [ToDOT] writes a pipeline in DOT format; [RenderSVG] rasterizes DOT to
// SVG through the pure-Go Graphviz port, so no system Graphviz install is
// needed. Rendering is a CLI concern - the HTTP API only returns reports.
package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes node types and data entries in labels.
	// When false, only the node ID is shown.
	Detailed bool
}

// ToDOT converts a pipeline to Graphviz DOT format.
//
// Each node ID appears once; for a duplicated ID the last definition wins,
// matching analysis semantics. Edges referencing IDs that no node defines
// are left out, since cycle detection cannot see them either. Editor
// positions are ignored and the graph is laid out left to right.
func ToDOT(p *pipeline.Pipeline, opts Options) string {
	// Last definition wins, first appearance fixes the output order.
	byID := make(map[string]pipeline.Node, len(p.Nodes))
	order := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		if _, seen := byID[n.ID]; !seen {
			order = append(order, n.ID)
		}
		byID[n.ID] = n
	}

	var buf bytes.Buffer
	buf.WriteString("digraph pipeline {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range order {
		n := byID[id]
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range p.Edges {
		if _, ok := byID[e.Source]; !ok {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n pipeline.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	parts := []string{fmt.Sprintf("type: %s", n.Type)}
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data[k]))
	}

	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n pipeline.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	// Tint the editor's entry and exit nodes so data flow reads at a glance.
	switch n.Type {
	case "customInput":
		attrs = append(attrs, "fillcolor=lightblue")
	case "customOutput":
		attrs = append(attrs, "fillcolor=lightgoldenrod")
	}
	return attrs
}
