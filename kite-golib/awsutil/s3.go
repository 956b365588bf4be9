package awsutil

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/kiteco/livebench/kite-golib/envutil"
)

var (
	// region used to discover bucket locations
	defaultRegion = envutil.GetenvDefault("AWS_REGION", "us-east-1")
	// directory used to buffer objects before upload
	bufferDir = envutil.GetenvDefault("KITE_S3CACHE", "")
)

// IsS3URI returns true if the path is an s3 uri.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ValidateURI checks whether the given uri points to S3 and names both a bucket and a key.
func ValidateURI(uri string) (*url.URL, error) {
	s3url, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if s3url.Scheme != "s3" {
		return nil, fmt.Errorf("%s is not a s3 path", uri)
	}
	if s3url.Host == "" {
		return nil, fmt.Errorf("%s has no bucket", uri)
	}
	if strings.TrimPrefix(s3url.Path, "/") == "" {
		return nil, fmt.Errorf("%s has no key", uri)
	}
	return s3url, nil
}

// Key returns the object key of a validated s3 url
func Key(s3url *url.URL) string {
	return strings.TrimPrefix(s3url.Path, "/")
}

// NewS3Reader returns a io.ReadCloser that will read the contents
// of the file pointed to by the uri. URI will be of the form
// s3://bucket-name/path/to/file
func NewS3Reader(uri string) (io.ReadCloser, error) {
	s3url, err := ValidateURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := clientFor(s3url)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s3url.Host),
		Key:    aws.String(Key(s3url)),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting %s: %v", uri, err)
	}
	return out.Body, nil
}

// BufferedS3Writer writes to a local buffer file and uploads it to S3 on Close
type BufferedS3Writer struct {
	f     *os.File
	s3uri *url.URL
}

// Write writes to disk
func (w *BufferedS3Writer) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Abort discards the buffer without uploading anything
func (w *BufferedS3Writer) Abort() error {
	defer os.Remove(w.f.Name())
	return w.f.Close()
}

// Close flushes to disk, copies the written data to s3, and closes the file
func (w *BufferedS3Writer) Close() error {
	defer os.Remove(w.f.Name()) // delete the buffer file from disk
	defer w.f.Close()           // after closing the buffer file handle

	if err := w.f.Sync(); err != nil {
		return err
	}
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	client, err := clientFor(w.s3uri)
	if err != nil {
		return err
	}

	_, err = client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(w.s3uri.Host),
		Key:    aws.String(Key(w.s3uri)),
		Body:   w.f,
	})
	if err != nil {
		return fmt.Errorf("error uploading %s: %v", w.s3uri, err)
	}
	return nil
}

// Name is the destination uri
func (w *BufferedS3Writer) Name() string {
	return w.s3uri.String()
}

// NewBufferedS3Writer returns an io.WriteCloser that will write
// to disk and upload to S3 on Close. Nothing is uploaded until Close,
// so an abandoned writer never produces a partial object.
func NewBufferedS3Writer(uri string) (*BufferedS3Writer, error) {
	return NewBufferedS3WriterWithTmp(bufferDir, uri)
}

// NewBufferedS3WriterWithTmp is NewBufferedS3Writer using the specified tmp dir to store
// the intermediate file. An empty tmpDir uses the system default.
func NewBufferedS3WriterWithTmp(tmpDir, uri string) (*BufferedS3Writer, error) {
	s3url, err := ValidateURI(uri)
	if err != nil {
		return nil, err
	}

	if tmpDir != "" {
		if err := os.MkdirAll(tmpDir, 0755); err != nil {
			return nil, err
		}
	}

	f, err := ioutil.TempFile(tmpDir, "s3buffer")
	if err != nil {
		return nil, err
	}
	return &BufferedS3Writer{f: f, s3uri: s3url}, nil
}

// --

func clientFor(uri *url.URL) (*s3.S3, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	region, err := objectRegion(sess, uri)
	if err != nil {
		return nil, fmt.Errorf("unable to determine region: %s", err)
	}

	// Re-create client for bucket's region
	return s3.New(sess, aws.NewConfig().WithRegion(region)), nil
}

func objectRegion(sess *session.Session, uri *url.URL) (string, error) {
	s3client := s3.New(sess, aws.NewConfig().WithRegion(defaultRegion))

	// Discover the region that this bucket is located in
	out, err := s3client.GetBucketLocation(&s3.GetBucketLocationInput{
		Bucket: aws.String(uri.Host),
	})
	if err != nil {
		return "", err
	}

	if out.LocationConstraint == nil || *out.LocationConstraint == "" {
		return "us-east-1", nil
	}
	return *out.LocationConstraint, nil
}
