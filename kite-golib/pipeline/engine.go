package pipeline

import (
	"context"

	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/kiteco/livebench/kite-golib/kitelog"
)

// EngineOptions configures a run
type EngineOptions struct {
	// Logger receives a line per record; nil discards them
	Logger kitelog.Interface
	// OnlyKeys, if set, restricts the named sources to the listed record keys
	OnlyKeys map[string][]string
}

// DefaultEngineOptions runs every record without logging
var DefaultEngineOptions = EngineOptions{}

// Engine runs a pipeline in the calling goroutine.
type Engine struct {
	pipe  Pipeline
	opts  EngineOptions
	deps  DependentMap
	stats *runStats
}

// NewEngine validates the pipeline and returns an engine ready to run it.
func NewEngine(pipe Pipeline, opts EngineOptions) (*Engine, error) {
	if err := pipe.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid pipeline")
	}
	opts.Logger = kitelog.OrDiscard(opts.Logger)

	return &Engine{
		pipe:  pipe,
		opts:  opts,
		deps:  NewDependentMap(pipe.Parents),
		stats: newRunStats(),
	}, nil
}

// Run drains each source in order, pushing every record through its dependents, then aggregates and
// finalizes every aggregator. If a source fails, or ctx is done, Run returns the error without
// aggregating or finalizing anything.
func (e *Engine) Run(ctx context.Context) (map[Aggregator]Sample, error) {
	w := worker{
		deps:   e.deps,
		stats:  e.stats,
		logger: e.opts.Logger,
	}

	for _, s := range e.pipe.Sources {
		only := e.onlyKeys(s)
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			rec, err := s.SourceOut(ctx)
			if err != nil {
				return nil, errors.WrapfWithStack(err, "source %s failed", s.Name())
			}
			if rec.Empty() {
				break
			}
			if only != nil && !only[rec.Key] {
				continue
			}

			w.Run(s, rec)
		}
	}

	aggs := e.pipe.Aggregators()
	res := make(map[Aggregator]Sample, len(aggs))
	for _, agg := range aggs {
		s, err := agg.Aggregate()
		if err != nil {
			return nil, errors.WrapfWithStack(err, "error aggregating %s", agg.Name())
		}
		res[agg] = s
	}

	for _, agg := range aggs {
		if err := agg.Finalize(); err != nil {
			return nil, errors.WrapfWithStack(err, "error finalizing %s", agg.Name())
		}
	}

	return res, nil
}

// Stats returns a copy of the per-feed counters collected so far.
func (e *Engine) Stats() map[string]FeedStats {
	return e.stats.Snapshot()
}

func (e *Engine) onlyKeys(s Source) map[string]bool {
	keys, ok := e.opts.OnlyKeys[s.Name()]
	if !ok {
		return nil
	}
	only := make(map[string]bool, len(keys))
	for _, k := range keys {
		only[k] = true
	}
	return only
}
