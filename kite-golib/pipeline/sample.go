package pipeline

import "fmt"

// Sample represents a piece of data that is used as input/output for a Feed.
type Sample interface {
	SampleTag()
}

// WrapError can be returned by a Transform in place of a sample to drop its input. The engine counts
// dropped inputs per feed by reason, so a feed should use a small fixed set of reasons. Wrapping a sample
// error composes the two reasons.
func WrapError(reason string, err error) Sample {
	if s, ok := err.(sampleError); ok {
		return sampleError{Reason: fmt.Sprintf("%s: %s", reason, s.Reason), Err: s.Err}
	}
	return sampleError{Reason: reason, Err: err}
}

// sampleError is used internally by the pipeline to communicate that a feed cannot return a sample for a reason
type sampleError struct {
	Reason string
	Err    error
}

// sampleError implements pipeline.Sample
func (sampleError) SampleTag() {}

// sampleError implements error
func (s sampleError) Error() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %v", s.Reason, s.Err)
	}
	return s.Reason
}

func (s sampleError) Unwrap() error {
	return s.Err
}

func asSampleError(s Sample) (sampleError, bool) {
	se, ok := s.(sampleError)
	return se, ok
}
