package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipecheck/pkg/cache"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/history"
	"github.com/matzehuels/pipecheck/pkg/observability"
)

// Runner encapsulates pipeline analysis with caching and history recording.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// analysis results. Multiple goroutines can safely use the same Runner
// with different pipelines.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	History history.Store
	Logger  *log.Logger
}

// NewRunner creates a runner with the given collaborators.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If store is nil, a NullStore is used (history disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, store history.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if store == nil {
		store = history.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		History: store,
		Logger:  logger,
	}
}

// Execute validates and analyzes a pipeline, consulting the report cache
// before computing. Cache and history failures never fail the run; only
// invalid input or an internal analysis failure produces an error.
func (r *Runner) Execute(ctx context.Context, p *Pipeline, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if dups := p.duplicateNodeIDs(); len(dups) > 0 {
		logger.Debug("duplicate node ids, last definition wins", "ids", dups)
	}

	observability.Analysis().OnAnalyzeStart(ctx, len(p.Nodes), len(p.Edges))
	start := time.Now()

	// Compute cache key from the canonical document
	data, err := p.CanonicalJSON()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize pipeline")
	}
	pipelineHash := cache.Hash(data)
	cacheKey := r.Keyer.ReportKey(pipelineHash)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var report Report
			if err := json.Unmarshal(cached, &report); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				return r.finish(ctx, logger, report, pipelineHash, true, time.Since(start), opts)
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	report, err := safeAnalyze(p)
	if err != nil {
		observability.Analysis().OnAnalyzeComplete(ctx, false, false, time.Since(start), err)
		return nil, err
	}

	// Cache the result
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = cache.TTLReport
	}
	if encoded, err := json.Marshal(report); err == nil {
		setErr := cache.RetryWithBackoff(ctx, func() error {
			return r.Cache.Set(ctx, cacheKey, encoded, ttl)
		})
		if setErr != nil {
			logger.Debug("cache report", "error", setErr)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", len(encoded))
		}
	}

	return r.finish(ctx, logger, report, pipelineHash, false, time.Since(start), opts)
}

// finish fires completion hooks, records history, and logs the outcome.
func (r *Runner) finish(ctx context.Context, logger *log.Logger, report Report, hash string, cached bool, duration time.Duration, opts Options) (*Result, error) {
	observability.Analysis().OnAnalyzeComplete(ctx, report.IsDAG, cached, duration, nil)

	rec := history.NewRecord(report.NumNodes, report.NumEdges, report.IsDAG, duration, cached, opts.Source)
	if err := r.History.Append(ctx, rec); err != nil {
		logger.Warn("record history", "error", err)
	}

	logger.Info("analyzed pipeline",
		"nodes", report.NumNodes,
		"edges", report.NumEdges,
		"is_dag", report.IsDAG,
		"cached", cached,
		"duration", duration)

	return &Result{
		Report:       report,
		PipelineHash: hash,
		Cached:       cached,
		Duration:     duration,
	}, nil
}

// safeAnalyze guards the traversal against panics so one malformed request
// can never take down a server worker. A recovered panic surfaces as an
// internal error, distinct from input validation failures.
func safeAnalyze(p *Pipeline) (report Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInternal, "analyze: %v", r)
		}
	}()
	return Analyze(p), nil
}

// Close releases resources held by the runner (cache and history store).
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if r.History != nil {
		if err := r.History.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
