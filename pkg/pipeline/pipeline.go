// Package pipeline provides the core analysis pipeline for pipecheck.
//
// This package implements the complete read → validate → analyze flow that
// is shared by the HTTP API and the CLI. Centralizing this logic keeps both
// entry points in lockstep and avoids duplicating caching behavior.
//
// # Architecture
//
// An analysis run has three stages:
//
//  1. Validate: Check that nodes and edges carry their required fields
//  2. Analyze: Build the adjacency structure and test it for cycles
//  3. Record: Cache the report and append a summary to the history store
//
// Validation and analysis are pure functions of the input. Only the record
// stage touches external state, and failures there never fail the run.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	p, err := pipeline.ReadJSON(req.Body)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, p, pipeline.Options{Source: pipeline.SourceAPI})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Report.IsDAG)
//
// Analyze without caching or history:
//
//	report := pipeline.Analyze(p)
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipecheck/pkg/dag"
)

// =============================================================================
// Wire Types - JSON Format Shared by Editor, API, and CLI
// =============================================================================

// Position is a node's location on the editor canvas.
// It is carried through for round-tripping but plays no part in analysis.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single pipeline step as emitted by the React Flow editor.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
}

// Edge is a directed connection between two nodes. Source and Target
// reference node IDs; the handle fields identify connection points on
// the editor canvas and are ignored by analysis.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Pipeline is the full graph document submitted for analysis.
type Pipeline struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeIDs returns the node IDs in input order, duplicates included.
func (p *Pipeline) NodeIDs() []string {
	ids := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// CanonicalJSON returns a stable serialization of the pipeline used for
// cache keys. Struct fields marshal in declaration order and map keys are
// sorted, so equal pipelines produce equal bytes regardless of how the
// input document was formatted.
func (p *Pipeline) CanonicalJSON() ([]byte, error) {
	return json.Marshal(p)
}

// dagEdges converts the wire edges into dag edges.
func (p *Pipeline) dagEdges() []dag.Edge {
	edges := make([]dag.Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = dag.Edge{From: e.Source, To: e.Target}
	}
	return edges
}

// duplicateNodeIDs returns IDs that appear more than once, in first-seen
// order. The graph keeps the last definition of a duplicated ID.
func (p *Pipeline) duplicateNodeIDs() []string {
	counts := make(map[string]int, len(p.Nodes))
	for _, n := range p.Nodes {
		counts[n.ID]++
	}

	var dups []string
	reported := make(map[string]bool)
	for _, n := range p.Nodes {
		if counts[n.ID] > 1 && !reported[n.ID] {
			dups = append(dups, n.ID)
			reported[n.ID] = true
		}
	}
	return dups
}

// =============================================================================
// Options and Result - Runner Configuration
// =============================================================================

// Source constants tag where an analysis request originated.
const (
	SourceAPI = "api"
	SourceCLI = "cli"
)

// Options contains configuration for a single analysis run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Refresh forces recomputation even when a cached report exists.
	Refresh bool `json:"refresh,omitempty"`

	// Source tags history records with the request origin.
	Source string `json:"source,omitempty"`

	// CacheTTL overrides how long the report is cached. Zero means the
	// default report TTL.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of an analysis run.
type Result struct {
	// Report is the computed summary.
	Report Report

	// PipelineHash is the content hash of the canonical pipeline document.
	PipelineHash string

	// Cached reports whether the report came from the cache.
	Cached bool

	// Duration is the total run time, including cache lookups.
	Duration time.Duration
}
