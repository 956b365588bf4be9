// Package dataset holds a split of raw records in memory. A Dataset is never mutated:
// Shuffle, Select and Head return new Datasets sharing the underlying rows.
package dataset

import (
	"github.com/kiteco/livebench/kite-golib/nprand"
)

// Row is a single raw record as decoded from JSON. Numbers are json.Number.
type Row map[string]interface{}

// Dataset is an ordered, indexable collection of rows.
type Dataset struct {
	name string
	rows []Row
}

// New wraps rows in a Dataset.
func New(name string, rows []Row) *Dataset {
	return &Dataset{name: name, rows: rows}
}

// Name identifies where the rows came from.
func (d *Dataset) Name() string {
	return d.name
}

// Len is the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Row returns the i-th row.
func (d *Dataset) Row(i int) Row {
	return d.rows[i]
}

// Rows returns the rows in order. The slice must not be modified.
func (d *Dataset) Rows() []Row {
	return d.rows
}

// Select returns a Dataset holding the rows at the given indices, in that order.
func (d *Dataset) Select(indices []int) *Dataset {
	rows := make([]Row, 0, len(indices))
	for _, i := range indices {
		rows = append(rows, d.rows[i])
	}
	return New(d.name, rows)
}

// Head returns the first n rows, or all of them if n >= Len(). A negative n keeps everything.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 || n >= len(d.rows) {
		return d
	}
	return New(d.name, d.rows[:n])
}

// Shuffle reorders the full dataset by np.random.default_rng(seed).permutation(Len()),
// which is what the Hugging Face datasets library does for shuffle(seed=seed).
func (d *Dataset) Shuffle(seed uint64) *Dataset {
	return d.Select(nprand.DefaultRNG(seed).Permutation(len(d.rows)))
}
