package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/kiteco/livebench/kite-golib/dataset"
	"github.com/kiteco/livebench/kite-golib/kitelog"
	"github.com/kiteco/livebench/kite-golib/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader serves datasets from memory and records the order sources were requested in.
type fakeLoader struct {
	datasets map[string]*dataset.Dataset
	errs     map[string]error
	loaded   []string
}

func (f *fakeLoader) Load(ctx context.Context, src string) (*dataset.Dataset, error) {
	f.loaded = append(f.loaded, src)
	if err := f.errs[src]; err != nil {
		return nil, err
	}
	ds, ok := f.datasets[src]
	if !ok {
		return nil, fmt.Errorf("no such dataset: %s", src)
	}
	return ds, nil
}

// numbered returns n rows with question ids "<prefix><i>"
func numbered(name, prefix string, n int) *dataset.Dataset {
	var rows []dataset.Row
	for i := 0; i < n; i++ {
		rows = append(rows, dataset.Row{"question_id": fmt.Sprintf("%s%d", prefix, i)})
	}
	return dataset.New(name, rows)
}

// readAll drains s, returning the records read before any error
func readAll(s pipeline.Source) ([]pipeline.Record, error) {
	var recs []pipeline.Record
	for {
		rec, err := s.SourceOut(context.Background())
		if err != nil || rec.Empty() {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

func TestIsFileSource(t *testing.T) {
	for _, src := range []string{
		"data/math.jsonl", "math.jsonl.gz", "x.json", "x.json.gz",
		"/abs/path", "s3://bucket/key", "http://host/x", "https://host/x", "file:///tmp/x",
	} {
		assert.True(t, isFileSource(src), src)
	}
	for _, src := range []string{"livebench/math", "squad", "org/name-v2"} {
		assert.False(t, isFileSource(src), src)
	}
}

func TestSample(t *testing.T) {
	ds := numbered("d", "q", 5)

	ids := func(ds *dataset.Dataset) []interface{} {
		var out []interface{}
		for _, r := range ds.Rows() {
			out = append(out, r["question_id"])
		}
		return out
	}

	assert.Equal(t, []interface{}{"q4", "q2"}, ids(Sample(ds, 2)))
	assert.Equal(t, []interface{}{"q4", "q2", "q3", "q1", "q0"}, ids(Sample(ds, 5)))
	assert.Equal(t, []interface{}{"q4", "q2", "q3", "q1", "q0"}, ids(Sample(ds, 200)))
	assert.Equal(t, []interface{}{"q4", "q2", "q3", "q1", "q0"}, ids(Sample(ds, -1)))
	assert.Empty(t, ids(Sample(ds, 0)))
	assert.Equal(t, 0, Sample(dataset.New("empty", nil), 3).Len())

	// the input is left untouched
	assert.Equal(t, []interface{}{"q0", "q1", "q2", "q3", "q4"}, ids(ds))
}

func TestTopics(t *testing.T) {
	loader := &fakeLoader{datasets: map[string]*dataset.Dataset{
		"a":     numbered("a", "a", 3),
		"empty": numbered("empty", "e", 0),
		"b":     numbered("b", "b", 2),
	}}

	var buf bytes.Buffer
	logger := kitelog.New(&buf, "test")
	tp := newTopics([]Entry{{"a", "A"}, {"empty", "E"}, {"b", "B"}}, loader, 2, logger)

	recs, err := readAll(tp.Source())
	require.NoError(t, err)

	var keys []string
	var topics []string
	for _, r := range recs {
		keys = append(keys, r.Key)
		topics = append(topics, r.Value.(topicRow).Topic)
	}
	assert.Equal(t, []string{"0-A/0", "0-A/1", "2-B/0", "2-B/1"}, keys)
	assert.Equal(t, []string{"A", "A", "B", "B"}, topics)
	assert.Equal(t, []int{2, 0, 2}, tp.counts)
	assert.Equal(t, []string{"a", "empty", "b"}, loader.loaded)

	out := buf.String()
	assert.Contains(t, out, "loading dataset: a (topic=A)")
	assert.Contains(t, out, "loading dataset: empty (topic=E)")
	assert.Contains(t, out, "  -> collected 0 examples")
	assert.Len(t, logger.Durations, 3)
}

func TestTopics_LoadError(t *testing.T) {
	loader := &fakeLoader{
		datasets: map[string]*dataset.Dataset{"a": numbered("a", "a", 1)},
		errs:     map[string]error{"b": fmt.Errorf("404")},
	}
	tp := newTopics([]Entry{{"a", "A"}, {"b", "B"}, {"c", "C"}}, loader, -1, kitelog.New(&bytes.Buffer{}, ""))

	recs, err := readAll(tp.Source())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading b (topic=B)")
	assert.Len(t, recs, 1)
	assert.Equal(t, []string{"a", "b"}, loader.loaded)
}
