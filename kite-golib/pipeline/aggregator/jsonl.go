package aggregator

import (
	"bufio"
	"strings"

	"github.com/kiteco/livebench/kite-golib/errors"
	"github.com/kiteco/livebench/kite-golib/fileutil"
	"github.com/kiteco/livebench/kite-golib/pipeline"
	"github.com/kiteco/livebench/kite-golib/pipeline/sample"
)

// JSONLWriter collects every sample it receives and, on Finalize, writes them in arrival order to a single
// JSON-lines file. The path may be local or s3://; a ".gz" suffix gzips the output. Nothing appears at the
// path until Finalize succeeds.
type JSONLWriter struct {
	name string
	path string

	samples []pipeline.Sample
	written int64
}

// NewJSONLWriter returns a JSONLWriter feed called name that writes to path.
func NewJSONLWriter(name, path string) *JSONLWriter {
	return &JSONLWriter{
		name: name,
		path: path,
	}
}

// Name implements pipeline.Aggregator
func (w *JSONLWriter) Name() string {
	return w.name
}

// In implements pipeline.Aggregator
func (w *JSONLWriter) In(s pipeline.Sample) {
	w.samples = append(w.samples, s)
}

// Aggregate implements pipeline.Aggregator, returning the number of samples collected
func (w *JSONLWriter) Aggregate() (pipeline.Sample, error) {
	return sample.Int(len(w.samples)), nil
}

// Finalize implements pipeline.Aggregator
func (w *JSONLWriter) Finalize() error {
	out, err := fileutil.NewBufferedWriter(w.path)
	if err != nil {
		return errors.WrapfWithStack(err, "error creating writer for %s", w.path)
	}

	n, err := w.emitAll(out)
	if err != nil {
		out.Abort()
		return errors.WrapfWithStack(err, "error writing %s", w.path)
	}

	if err := out.Close(); err != nil {
		return errors.WrapfWithStack(err, "error closing %s", w.path)
	}

	w.written = n
	return nil
}

func (w *JSONLWriter) emitAll(out fileutil.BufferedWriter) (int64, error) {
	cw := &countingWriter{w: out}
	bw := bufio.NewWriter(cw)
	em := NewJSONEmitter(bw, strings.HasSuffix(w.path, ".gz"))

	for i, s := range w.samples {
		if err := em.Emit(s); err != nil {
			return 0, errors.Errorf("error encoding sample %d: %v", i, err)
		}
	}
	if err := em.Close(); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

// Path the writer writes to
func (w *JSONLWriter) Path() string {
	return w.path
}

// BytesWritten is the size of the file written by Finalize, or zero before it succeeds.
func (w *JSONLWriter) BytesWritten() int64 {
	return w.written
}
