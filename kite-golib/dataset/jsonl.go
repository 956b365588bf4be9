package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/kiteco/livebench/kite-golib/fileutil"
)

const maxLineSize = 64 << 20

// DecodeRow decodes a single JSON object, keeping numbers as json.Number.
func DecodeRow(buf []byte) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()

	var row Row
	if err := dec.Decode(&row); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.Errorf("expected a JSON object, got null")
	}
	return row, nil
}

// ReadJSONL reads one JSON object per line. Blank lines are skipped.
func ReadJSONL(name string, r io.Reader) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	var rows []Row
	var lineno int
	for scanner.Scan() {
		lineno++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		row, err := DecodeRow(line)
		if err != nil {
			return nil, errors.Errorf("%s: line %d: %v", name, lineno, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("%s: %v", name, err)
	}
	return New(name, rows), nil
}

// LoadJSONL reads a JSONL file from a local path, http(s) URL or s3 URI. Paths ending in
// ".gz" are decompressed.
func LoadJSONL(path string) (ds *Dataset, err error) {
	r, err := fileutil.NewDecompressedReader(path)
	if err != nil {
		return nil, errors.WrapfWithStack(err, "error opening %s", path)
	}
	defer errors.Defer(&err, r.Close)

	return ReadJSONL(path, r)
}
