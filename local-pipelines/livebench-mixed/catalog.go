package main

import (
	"encoding/json"

	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/kiteco/livebench/kite-golib/fileutil"
)

const (
	// DefaultSamplesPerTopic caps the records kept per topic; a negative value keeps the whole split
	DefaultSamplesPerTopic = 200
	// Seed for the per-topic shuffle
	Seed = 42

	testSplit = "test"
)

// Entry pairs a dataset with the topic its records are labelled with.
// Source is a hub dataset id (e.g. "livebench/math") or a path/URI to a JSONL file.
type Entry struct {
	Source string `json:"source"`
	Topic  string `json:"topic"`
}

// DefaultCatalog is processed in order, and the output keeps that order.
var DefaultCatalog = []Entry{
	{Source: "livebench/math", Topic: "math"},
	{Source: "livebench/coding", Topic: "coding"},
	{Source: "livebench/reasoning", Topic: "reasoning"},
	{Source: "livebench/data_analysis", Topic: "data_analysis"},
	{Source: "livebench/language", Topic: "language"},
}

// LoadCatalog reads a JSON array of entries from a local or remote path.
func LoadCatalog(path string) ([]Entry, error) {
	buf, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading catalog %s", path)
	}

	var entries []Entry
	if err := json.Unmarshal(buf, &entries); err != nil {
		return nil, errors.Wrapf(err, "error decoding catalog %s", path)
	}

	if err := validateCatalog(entries); err != nil {
		return nil, errors.Wrapf(err, "invalid catalog %s", path)
	}
	return entries, nil
}

func validateCatalog(entries []Entry) error {
	if len(entries) == 0 {
		return errors.Errorf("catalog is empty")
	}
	for i, e := range entries {
		if e.Source == "" || e.Topic == "" {
			return errors.Errorf("entry %d needs both a source and a topic, got %+v", i, e)
		}
	}
	return nil
}
