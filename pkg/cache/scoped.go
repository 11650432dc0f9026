package cache

// ScopedKeyer wraps a Keyer with a namespace for isolation.
// This is useful when several deployments share one redis instance and
// must not read each other's entries.
//
// Example usage:
//
//	// Staging keys stay separate from production keys
//	keyer := cache.NewScopedKeyer(nil, "staging")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a namespace prefix.
// The prefix and a colon are prepended to all generated keys. A nil inner
// keyer falls back to the default scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a namespaced key for an analysis report.
func (k *ScopedKeyer) ReportKey(pipelineHash string) string {
	return k.prefix + ":" + k.inner.ReportKey(pipelineHash)
}
