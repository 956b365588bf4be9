package transform

import (
	"github.com/kiteco/livebench/kite-golib/pipeline"
)

// MapFn converts one input sample. A non-nil error drops the input and is reported to the engine as a
// sample error with the transform's name as the reason.
type MapFn func(pipeline.Sample) (pipeline.Sample, error)

// Map is a pipeline.Transform emitting at most one sample per input.
type Map struct {
	name string
	fn   MapFn

	pending pipeline.Sample
}

// NewMap returns a Map named name that applies fn to every input.
func NewMap(name string, fn MapFn) *Map {
	return &Map{name: name, fn: fn}
}

// Name implements pipeline.Feed
func (m *Map) Name() string {
	return m.name
}

// In implements pipeline.Dependent
func (m *Map) In(s pipeline.Sample) {
	out, err := m.fn(s)
	if err != nil {
		m.pending = pipeline.WrapError(m.name, err)
		return
	}
	m.pending = out
}

// TransformOut implements pipeline.Transform
func (m *Map) TransformOut() pipeline.Sample {
	out := m.pending
	m.pending = nil
	return out
}
