// Package cache provides byte-oriented caching for analysis reports.
//
// Analyzing a pipeline is cheap but editors poll aggressively, so verdicts
// are cached under a hash of the submitted payload. Three backends exist:
// a file cache for the CLI, a redis cache for shared deployments, and a
// null cache that disables caching entirely. All backends store opaque
// bytes; callers marshal their own values.
//
// Keys are produced by a [Keyer] so that alternative keying schemes
// (for example per-deployment prefixes via [ScopedKeyer]) can be swapped
// in without touching call sites.
package cache

import (
	"context"
	"time"
)

// TTLReport is how long analysis reports stay cached. A report only
// changes when the payload changes, and the payload hash is the key, so
// the TTL exists to bound disk and redis growth rather than to expire
// stale verdicts.
const TTLReport = 24 * time.Hour

// Cache is the interface implemented by all caching backends.
type Cache interface {
	// Get retrieves the value for key. The second return reports whether
	// the key was present; absence is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// ReportKey generates the key for an analysis report, given the
	// content hash of the submitted pipeline.
	ReportKey(pipelineHash string) string
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ReportKey generates a key for an analysis report. The pipeline hash is
// already a content digest, so it goes into the key verbatim.
func (k *DefaultKeyer) ReportKey(pipelineHash string) string {
	return "report:" + pipelineHash
}
