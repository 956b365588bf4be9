package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	var topics []string
	for _, e := range DefaultCatalog {
		assert.Equal(t, "livebench/"+e.Topic, e.Source)
		topics = append(topics, e.Topic)
	}
	assert.Equal(t, []string{"math", "coding", "reasoning", "data_analysis", "language"}, topics)
	assert.NoError(t, validateCatalog(DefaultCatalog))
}

func TestLoadCatalog(t *testing.T) {
	dir, err := ioutil.TempDir("", "catalog")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	write := func(name, contents string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
		return path
	}

	entries, err := LoadCatalog(write("ok.json", `[
		{"source": "livebench/math", "topic": "math"},
		{"source": "extra/math.jsonl", "topic": "math"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Source: "livebench/math", Topic: "math"},
		{Source: "extra/math.jsonl", Topic: "math"},
	}, entries)

	_, err = LoadCatalog(write("empty.json", `[]`))
	assert.Error(t, err)

	_, err = LoadCatalog(write("notopic.json", `[{"source": "livebench/math"}]`))
	assert.Error(t, err)

	_, err = LoadCatalog(write("bad.json", `{"source": "livebench/math"`))
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
