// Package dag builds adjacency structures from editor-supplied node and
// edge lists and decides whether the resulting directed graph is acyclic.
//
// # Overview
//
// Pipecheck receives graphs from a visual pipeline editor. The payloads are
// not trusted to be well formed: edges may reference nodes that were never
// supplied, and node identifiers may repeat. This package normalizes such
// input into an [Adjacency] structure and runs cycle detection over it.
//
// # Basic Usage
//
// Build the adjacency structure with [Build], then test it with [IsAcyclic]:
//
//	adj := dag.Build([]string{"a", "b"}, []dag.Edge{{From: "a", To: "b"}})
//	ok := dag.IsAcyclic([]string{"a", "b"}, adj)
//
// [Build] never fails: edges with unknown endpoints are dropped, and
// duplicate node identifiers collapse into a single key (the last
// occurrence wins). Callers that care about raw input counts must take
// them from the input slices, not from the filtered structure.
//
// # Cycle Detection
//
// [IsAcyclic] is a three-color depth-first search. Every node starts
// unvisited, turns in-progress when entered, and turns done when all of
// its successors are resolved. Meeting an in-progress node again means a
// back-edge, which is the definition of a cycle. Every still-unvisited
// node seeds a fresh traversal, so disconnected components are all
// examined. The search runs on an explicit stack to keep memory bounded
// on deep graphs.
//
// # Concurrency
//
// All state is allocated per call and discarded afterwards. Both functions
// are safe for concurrent use as long as callers do not mutate the shared
// input slices; the HTTP layer runs one invocation per request with no
// coordination.
package dag
