package aggregator

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"

	"github.com/kiteco/livebench/kite-golib/pipeline"
)

// Emitter emits samples to a writer or encoder of some sort
type Emitter interface {
	Emit(pipeline.Sample) error
	Close() error
}

// NewJSONEmitter returns an emitter that writes each sample as one line of JSON, gzipped if compress is set.
// HTML characters are written as-is.
func NewJSONEmitter(w io.Writer, compress bool) Emitter {
	je := &jsonEmitter{w: w}
	if compress {
		je.gz = gzip.NewWriter(w)
		je.w = je.gz
	}
	return je
}

type jsonEmitter struct {
	w   io.Writer
	gz  *gzip.Writer
	buf bytes.Buffer
}

func (je *jsonEmitter) Emit(s pipeline.Sample) error {
	je.buf.Reset()
	enc := json.NewEncoder(&je.buf)
	enc.SetEscapeHTML(false)
	// Encode terminates the line
	if err := enc.Encode(s); err != nil {
		return err
	}
	_, err := je.w.Write(je.buf.Bytes())
	return err
}

func (je *jsonEmitter) Close() error {
	if je.gz != nil {
		return je.gz.Close()
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
