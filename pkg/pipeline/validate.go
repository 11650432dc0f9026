package pipeline

import (
	"github.com/matzehuels/pipecheck/pkg/errors"
)

// Validate checks that every node and edge carries its required fields.
//
// Nodes need an id and a type; edges need an id, a source, and a target.
// Duplicate node IDs are not an error, and edges may reference IDs that no
// node defines. Both cases are resolved during analysis instead: the graph
// keeps the last definition of a duplicated ID and drops dangling edges.
func (p *Pipeline) Validate() error {
	for i, n := range p.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidPipeline, "node %d: missing id", i)
		}
		if n.Type == "" {
			return errors.New(errors.ErrCodeInvalidPipeline, "node %d (%s): missing type", i, n.ID)
		}
	}

	for i, e := range p.Edges {
		if e.ID == "" {
			return errors.New(errors.ErrCodeInvalidPipeline, "edge %d: missing id", i)
		}
		if e.Source == "" {
			return errors.New(errors.ErrCodeInvalidPipeline, "edge %d (%s): missing source", i, e.ID)
		}
		if e.Target == "" {
			return errors.New(errors.ErrCodeInvalidPipeline, "edge %d (%s): missing target", i, e.ID)
		}
	}

	return nil
}
