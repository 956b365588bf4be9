package main

import (
	"bytes"
	"context"
	"io/ioutil"

	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/kiteco/livebench/kite-golib/kitelog"
	"github.com/kiteco/livebench/kite-golib/pipeline"
	"github.com/kiteco/livebench/kite-golib/pipeline/aggregator"
	"github.com/kiteco/livebench/kite-golib/pipeline/sample"
	"github.com/kiteco/livebench/kite-golib/pipeline/transform"
)

type options struct {
	Catalog []Entry
	// Samples per topic, negative for all
	Samples int
	// Out is a local path or s3:// URI
	Out     string
	Loader  Loader
	// Logger defaults to discarding everything
	Logger  *kitelog.Logger
	// Only, if set, restricts the output to these record keys (e.g. "0-math/3")
	Only    []string
	Verbose bool
}

type result struct {
	// Counts is the number of records kept for each catalog entry
	Counts []int
	Total  int
	Path   string
	Bytes  int64
}

// run fetches and samples every catalog entry, extracts the output fields and writes the combined
// records to opts.Out. Nothing is written unless every entry loads.
func run(ctx context.Context, opts options) (result, error) {
	if err := validateCatalog(opts.Catalog); err != nil {
		return result{}, err
	}

	if opts.Logger == nil {
		opts.Logger = kitelog.New(ioutil.Discard, "")
	}

	topics := newTopics(opts.Catalog, opts.Loader, opts.Samples, opts.Logger)
	src := topics.Source()

	extract := transform.NewMap("extract", func(s pipeline.Sample) (pipeline.Sample, error) {
		tr, ok := s.(topicRow)
		if !ok {
			return nil, errors.Errorf("expected a topic row, got %T", s)
		}
		return Extract(tr.Row, tr.Topic), nil
	})
	writer := aggregator.NewJSONLWriter("writer", opts.Out)

	pm := make(pipeline.ParentMap)
	pm.Chain(src, extract, writer)

	engineOpts := pipeline.DefaultEngineOptions
	if len(opts.Only) > 0 {
		engineOpts.OnlyKeys = map[string][]string{topicsSource: opts.Only}
	}
	if opts.Verbose {
		engineOpts.Logger = opts.Logger
	}

	engine, err := pipeline.NewEngine(pipeline.Pipeline{
		Name:    "livebench-mixed",
		Parents: pm,
		Sources: []pipeline.Source{src},
	}, engineOpts)
	if err != nil {
		return result{}, err
	}

	res, err := engine.Run(ctx)
	if err != nil {
		return result{}, err
	}

	if opts.Verbose {
		var buf bytes.Buffer
		if err := pipeline.WriteStats(&buf, engine.Stats()); err == nil {
			opts.Logger.Println("feed stats:\n" + buf.String())
		}
	}

	total, ok := res[writer].(sample.Int)
	if !ok {
		return result{}, errors.Errorf("unexpected result from %s: %v", writer.Name(), res[writer])
	}

	return result{
		Counts: topics.counts,
		Total:  int(total),
		Path:   writer.Path(),
		Bytes:  writer.BytesWritten(),
	}, nil
}
