package source

import (
	"context"

	"github.com/kiteco/livebench/kite-golib/pipeline"
)

// Func wraps a function that emits records as a source. The function is called until it returns an
// empty record or an error.
func Func(name string, f func(ctx context.Context) (pipeline.Record, error)) pipeline.Source {
	return &funcSource{
		name: name,
		f:    f,
	}
}

type funcSource struct {
	name string
	f    func(ctx context.Context) (pipeline.Record, error)
}

// Name implements pipeline.Source
func (f *funcSource) Name() string {
	return f.name
}

// SourceOut implements pipeline.Source
func (f *funcSource) SourceOut(ctx context.Context) (pipeline.Record, error) {
	return f.f(ctx)
}
