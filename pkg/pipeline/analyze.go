package pipeline

import (
	"github.com/matzehuels/pipecheck/pkg/dag"
)

// Report is the analysis summary returned to API and CLI clients.
//
// NumNodes and NumEdges count the raw input, including any edges that were
// dropped from the adjacency structure because an endpoint does not exist.
// IsDAG reports whether the resolvable part of the graph is acyclic.
type Report struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`
}

// Analyze computes the report for a pipeline.
//
// The adjacency structure keys every node by ID and keeps only edges whose
// endpoints both exist. A pipeline with no nodes, or whose edges all
// dangle, counts as acyclic. Analyze is deterministic and does not modify
// the pipeline, so repeated calls always return the same report.
func Analyze(p *Pipeline) Report {
	ids := p.NodeIDs()
	adj := dag.Build(ids, p.dagEdges())

	return Report{
		NumNodes: len(p.Nodes),
		NumEdges: len(p.Edges),
		IsDAG:    dag.IsAcyclic(ids, adj),
	}
}
