package fileutil

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiteco/livebench/kite-golib/awsutil"
	"github.com/kiteco/livebench/kite-golib/errors"
)

// NewReader opens a local or remote path for reading. Paths of the form
// "s3://bucket/path/to/object" are read from S3, "http(s)://..." paths are
// fetched over HTTP, "file://" is stripped, and anything else is read from the
// local filesystem.
func NewReader(path string) (io.ReadCloser, error) {
	switch {
	case awsutil.IsS3URI(path):
		return awsutil.NewS3Reader(path)

	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		resp, err := http.Get(path)
		if err != nil {
			return nil, fmt.Errorf("error getting %s: %s", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			io.Copy(ioutil.Discard, resp.Body)
			return nil, errors.Errorf("error getting %s: status code %d", path, resp.StatusCode)
		}
		return resp.Body, nil

	default:
		return os.Open(strings.TrimPrefix(path, "file://"))
	}
}

// NewDecompressedReader is NewReader, transparently gunzipping paths ending in ".gz".
func NewDecompressedReader(path string) (io.ReadCloser, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return r, nil
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		r.Close()
		return nil, errors.Errorf("error opening gzip stream %s: %v", path, err)
	}
	return gzipReadCloser{Reader: gz, under: r}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g gzipReadCloser) Close() error {
	return errors.Combine(g.Reader.Close(), g.under.Close())
}

// NamedWriteCloser is a file-like object extending io.WriteCloser with a string Name() similar to os.File.Name()
type NamedWriteCloser interface {
	io.WriteCloser
	Name() string
}

// BufferedWriter is a NamedWriteCloser whose contents only appear at the destination once
// Close succeeds.
type BufferedWriter interface {
	NamedWriteCloser
	// Abort discards everything written so far, leaving the destination untouched.
	Abort() error
}

// NewBufferedWriter opens a local or remote path for writing. If the path starts with
// "s3://", then this will write to a local buffer, copying to s3 on close. Otherwise,
// this will write to "<path>.tmp" on the local FS (creating parent directories as needed)
// and rename it onto path on close.
func NewBufferedWriter(path string) (BufferedWriter, error) {
	if awsutil.IsS3URI(path) {
		w, err := awsutil.NewBufferedS3Writer(path)
		if err != nil {
			return nil, err
		}
		return w, nil
	}

	path = strings.TrimPrefix(path, "file://")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	f, err := os.Create(path + ".tmp")
	if err != nil {
		return nil, err
	}
	return &localFile{f: f, path: path}, nil
}

type localFile struct {
	f    *os.File
	path string
}

func (l *localFile) Write(p []byte) (int, error) {
	return l.f.Write(p)
}

func (l *localFile) Name() string {
	return l.path
}

func (l *localFile) Abort() error {
	defer os.Remove(l.f.Name())
	return l.f.Close()
}

func (l *localFile) Close() error {
	if err := l.f.Close(); err != nil {
		os.Remove(l.f.Name())
		return err
	}
	if err := os.Rename(l.f.Name(), l.path); err != nil {
		os.Remove(l.f.Name())
		return errors.Errorf("unable to rename %s -> %s: %v", l.f.Name(), l.path, err)
	}
	return nil
}

// ReadFile reads the contents of a local or remote path.
func ReadFile(path string) ([]byte, error) {
	r, err := NewDecompressedReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ioutil.ReadAll(r)
}
