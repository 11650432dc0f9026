// Package pkg provides the core libraries for pipecheck pipeline validation.
//
// # Overview
//
// Pipecheck analyzes pipelines built in a visual node editor: it counts the
// nodes and edges of a submitted document and verifies that the connections
// form a directed acyclic graph. The pkg directory is organized into three
// main areas:
//
//  1. [dag] and [pipeline] - Domain logic (graph traversal, document model,
//     analysis orchestration)
//  2. [cache] and [history] - Infrastructure (report caching, run records)
//  3. [render] - Diagram output (DOT and SVG via Graphviz)
//
// # Architecture
//
// The typical data flow through pipecheck:
//
//	Editor export (JSON)
//	         ↓
//	    [pipeline] package (decode + validate)
//	         ↓
//	    [dag] package (adjacency + cycle detection)
//	         ↓
//	    Report {num_nodes, num_edges, is_dag}
//
// The same [pipeline.Runner] sits behind both the CLI and the HTTP API, so
// caching, history recording, and logging behave identically for both.
//
// # Quick Start
//
// Analyze a pipeline document:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/pipecheck/pkg/pipeline"
//	)
//
//	p, _ := pipeline.ReadFile("pipeline.json")
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	res, _ := runner.Execute(context.Background(), p, pipeline.Options{})
//	fmt.Println(res.Report.IsDAG)
//
// # Main Packages
//
// [dag] - Cycle detection over string-keyed adjacency structures using an
// iterative three-color depth-first traversal. Deliberately small and free
// of dependencies so the verdict is easy to audit.
//
// [pipeline] - The pipeline document model (nodes, edges, positions), input
// decoding, validation, and the [pipeline.Runner] that ties analysis to the
// cache and history stores.
//
// [cache] - Report cache with file and redis backends, content-addressed by
// the hash of the canonical pipeline document.
//
// [history] - Append-only record of analysis runs with SQLite and MongoDB
// backends. Records hold summary numbers only, never the pipeline itself.
//
// [render] - DOT generation and SVG rendering for pipeline diagrams via the
// embedded Graphviz engine.
//
// [errors] - Structured errors with machine-readable codes shared by the
// CLI (exit codes) and the HTTP API (status mapping).
//
// [observability] - Hook interfaces that let the server attach prometheus
// metrics without the core libraries importing any metrics framework.
//
// [buildinfo] - Version information injected at build time via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/dag/...      # Specific package
//	go test -run Example       # Examples only
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/dag
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/history
// [render]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pipecheck/pkg/buildinfo
package pkg
