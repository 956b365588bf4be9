package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kiteco/livebench/kite-golib/dataset"
	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/kiteco/livebench/kite-golib/fileutil"
	"github.com/kiteco/livebench/kite-golib/hfhub"
	"github.com/kiteco/livebench/kite-golib/kitelog"
	"github.com/kiteco/livebench/kite-golib/pipeline"
	"github.com/kiteco/livebench/kite-golib/pipeline/source"
)

// Loader fetches the test split named by a catalog source.
type Loader interface {
	Load(ctx context.Context, src string) (*dataset.Dataset, error)
}

// hubLoader reads JSONL paths directly and everything else from the hub.
type hubLoader struct {
	hub *hfhub.Client
}

func (l hubLoader) Load(ctx context.Context, src string) (*dataset.Dataset, error) {
	if isFileSource(src) {
		return dataset.LoadJSONL(src)
	}
	return l.hub.LoadSplit(ctx, src, testSplit)
}

var jsonlSuffixes = []string{".jsonl", ".jsonl.gz", ".json", ".json.gz"}

func isFileSource(src string) bool {
	if fileutil.IsURI(src) || strings.HasPrefix(src, "/") {
		return true
	}
	for _, suffix := range jsonlSuffixes {
		if strings.HasSuffix(src, suffix) {
			return true
		}
	}
	return false
}

// Sample shuffles ds with Seed and keeps the first limit rows. A negative limit, or one at least
// as large as the dataset, keeps every row.
func Sample(ds *dataset.Dataset, limit int) *dataset.Dataset {
	return ds.Shuffle(Seed).Head(limit)
}

// topicRow is a raw row tagged with the topic of its catalog entry
type topicRow struct {
	Topic string
	Row   dataset.Row
}

// SampleTag implements pipeline.Sample
func (topicRow) SampleTag() {}

// topics emits the sampled rows of each catalog entry in catalog order. An entry is only fetched once
// every row of the previous one has been emitted.
type topics struct {
	entries []Entry
	loader  Loader
	limit   int
	logger  *kitelog.Logger

	next  int
	batch *dataset.Dataset
	pos   int

	// counts holds the number of rows kept for each loaded entry
	counts []int
}

func newTopics(entries []Entry, loader Loader, limit int, logger *kitelog.Logger) *topics {
	return &topics{
		entries: entries,
		loader:  loader,
		limit:   limit,
		logger:  logger,
	}
}

// topicsSource names the source; record keys are "<catalog index>-<topic>/<row>"
const topicsSource = "topics"

// Source wraps t as a pipeline source
func (t *topics) Source() pipeline.Source {
	return source.Func(topicsSource, t.out)
}

func (t *topics) out(ctx context.Context) (pipeline.Record, error) {
	for t.batch == nil || t.pos >= t.batch.Len() {
		if t.next >= len(t.entries) {
			return pipeline.Record{}, nil
		}
		if err := t.load(ctx, t.next); err != nil {
			return pipeline.Record{}, err
		}
		t.next++
	}

	idx := t.next - 1
	e := t.entries[idx]
	rec := pipeline.Record{
		Key:   fmt.Sprintf("%d-%s/%d", idx, e.Topic, t.pos),
		Value: topicRow{Topic: e.Topic, Row: t.batch.Row(t.pos)},
	}
	t.pos++
	return rec, nil
}

func (t *topics) load(ctx context.Context, idx int) error {
	e := t.entries[idx]
	t.logger.Printf("loading dataset: %s (topic=%s)", e.Source, e.Topic)

	start := time.Now()
	ds, err := t.loader.Load(ctx, e.Source)
	if err != nil {
		return errors.WrapfWithStack(err, "error loading %s (topic=%s)", e.Source, e.Topic)
	}
	t.logger.Durations.Since(fmt.Sprintf("%d-%s", idx, e.Topic), start)

	ds = Sample(ds, t.limit)
	t.logger.Printf("  -> collected %d examples", ds.Len())

	t.batch = ds
	t.pos = 0
	t.counts = append(t.counts, ds.Len())
	return nil
}
