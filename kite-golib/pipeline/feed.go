package pipeline

import "context"

// The pipeline composed of a dependency graph of Feeds. A Feed may be one of the following:
// * Source - creates records for analysis. Each record contains a key as well as an associated Sample.
// * Dependent - takes in Samples returned by Sources or other Feeds. Special cases of Dependents are:
//   * Transform - takes in Samples as input and emits Sample(s) for output to other Feeds
//   * Aggregator - takes in Samples for input and whose results are aggregated after the pipeline runs. Once the engine
//     finishes running, it returns one final aggregated Sample for each Aggregator in the pipeline.

// Each Dependent should have exactly one parent defined in the pipeline (see ParentMap), whose output is
// used as input for the feed in question. Sources do not have any parents as they are expected to generate the
// source data.

// The engine drives sources one at a time in the order they are listed in the Pipeline, and every record is pushed
// through the whole graph before the next one is requested, so none of the methods need to be thread-safe.

// A Feed describes any entity that emits and/or processes incoming data. A data pipeline is composed of dependency
// graph of Feeds.
type Feed interface {
	// Name of the feed.
	Name() string
}

// Source describes a Feed that emits records for analysis.
type Source interface {
	Feed
	// SourceOut will be repeatedly called until an empty Record struct is returned. A non-nil error stops the
	// engine; no aggregator is finalized after that.
	SourceOut(ctx context.Context) (Record, error)
}

// Record contains a sample emitted by a Source along with some extra metadata.
type Record struct {
	// An optional string that should uniquely identify the record within the dataset.
	Key string
	// The sample for the given key
	Value Sample
}

// Empty reports whether the record marks the end of a source. A record without a value carries nothing for
// the dependents, so it is treated as the end regardless of its key.
func (r Record) Empty() bool {
	return r.Value == nil
}

// Dependent is used to describe Feeds that take in samples produced by other feeds.
type Dependent interface {
	Feed
	In(Sample)
}

// Transform describes a Dependent that transforms samples. For every sample received from the parent, In is called
// once, followed by calls to TransformOut until TransformOut returns nil.
type Transform interface {
	Dependent
	TransformOut() Sample
}

// Aggregator describes a Dependent that aggregates results. The aggregation happens after every source is
// exhausted, and a Sample is returned for each aggregator once the engine has finished running.
type Aggregator interface {
	Dependent
	// Aggregate is called once after all sources are exhausted and should return the final result.
	Aggregate() (Sample, error)
	// Finalize is called once every aggregator has produced its result; this can perform any out-of-band
	// operations as needed (e.g. writing output files).
	Finalize() error
}
