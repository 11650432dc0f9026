// Package history persists analysis summaries for later inspection.
//
// Each run produces one [Record] holding the report counts, the verdict,
// and timing metadata. Only summaries are stored, never the submitted
// graphs, so history backends hold no pipeline content.
//
// Three backends implement [Store]: a SQLite file for single-host setups,
// MongoDB for shared deployments, and a no-op store for when history is
// disabled. Writes are best-effort at the call site; a failing backend
// must never fail an analysis run.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one analysis summary.
type Record struct {
	ID         string    `json:"id" bson:"_id"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	NumNodes   int       `json:"num_nodes" bson:"num_nodes"`
	NumEdges   int       `json:"num_edges" bson:"num_edges"`
	IsDAG      bool      `json:"is_dag" bson:"is_dag"`
	DurationMS int64     `json:"duration_ms" bson:"duration_ms"`
	Cached     bool      `json:"cached" bson:"cached"`
	Source     string    `json:"source,omitempty" bson:"source,omitempty"`
}

// NewRecord builds a record for one analysis run with a fresh ID and
// timestamp.
func NewRecord(numNodes, numEdges int, isDAG bool, duration time.Duration, cached bool, source string) Record {
	return Record{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		NumNodes:   numNodes,
		NumEdges:   numEdges,
		IsDAG:      isDAG,
		DurationMS: duration.Milliseconds(),
		Cached:     cached,
		Source:     source,
	}
}

// Store persists analysis records.
type Store interface {
	// Append stores one record.
	Append(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close releases the backend connection.
	Close() error
}
