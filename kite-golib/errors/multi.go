package errors

import (
	"strings"
)

// Errors represents a non-empty list of errors. A nil Errors means no error, so callers
// can compare against nil as usual.
type Errors interface {
	error
	// Slice returns a copy of the underlying (non-nil) errors.
	Slice() []error
	// Len is always > 0.
	Len() int

	sliceNoCopy() []error
}

type errorSlice []error

func (m errorSlice) sliceNoCopy() []error {
	return []error(m)
}

func (m errorSlice) Slice() []error {
	return append([]error(nil), m...)
}

func (m errorSlice) Len() int {
	return len(m)
}

func (m errorSlice) Error() string {
	parts := make([]string, 0, len(m))
	for _, err := range m {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "\n")
}

// Append appends err to errs. Nested Errors are flattened and nil errors are dropped.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}

	var out errorSlice
	if errs != nil {
		// copy so that appending never writes into a shared backing array
		out = errorSlice(errs.Slice())
	}

	if nested, ok := err.(Errors); ok && nested != nil {
		return append(out, nested.sliceNoCopy()...)
	}
	return append(out, err)
}

// Combine combines errors e & f into a single error, returning nil if both are nil.
func Combine(e, f error) error {
	if e == nil {
		return f
	}
	if f == nil {
		return e
	}

	var errs Errors
	errs = Append(errs, e)
	errs = Append(errs, f)
	return errs
}

// Defer is a helper method for deferring error-returning functions such as Close:
//
//   defer errors.Defer(&err, f.Close)
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
