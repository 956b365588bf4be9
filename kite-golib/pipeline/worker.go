package pipeline

import (
	"github.com/kiteco/livebench/kite-golib/kitelog"
)

// worker pushes records from a source through the dependents of the pipeline.
type worker struct {
	deps   DependentMap
	stats  *runStats
	logger kitelog.Interface
}

// Run the pipeline for the given record originating from the given source.
func (w worker) Run(s Source, rec Record) {
	w.logger.Printf("running %s/%s", s.Name(), rec.Key)

	defer func() {
		if r := recover(); r != nil {
			w.logger.Printf("panic for source: %s, key: %v", s.Name(), rec.Key)
			panic(r)
		}
	}()

	w.stats.IncrFeedOut(s)
	for _, dep := range w.deps[s] {
		w.runDependent(dep, rec.Value)
	}
}

func (w worker) runDependent(d Dependent, in Sample) {
	w.stats.IncrFeedIn(d)

	d.In(in)

	t, ok := d.(Transform)
	if !ok {
		return
	}

	for {
		sample := t.TransformOut()
		if sample == nil {
			return
		}

		if se, ok := asSampleError(sample); ok {
			w.stats.AddFeedError(d, se)
			continue
		}

		w.stats.IncrFeedOut(d)
		for _, dep := range w.deps[d] {
			w.runDependent(dep, sample)
		}
	}
}
