package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Errorf is re-exported from fmt
var Errorf = fmt.Errorf

// New is an alias to Errorf
var New = Errorf

// Is is re-exported from the standard library
var Is = errors.Is

// As is re-exported from the standard library
var As = errors.As

// ErrorfWithStack is Errorf re-exported from github.com/pkg/errors
var ErrorfWithStack = pkgerrors.Errorf

// WrapfOrNil annotates err with a message, returning nil if err is nil.
func WrapfOrNil(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, fmt.Sprintf(format, args...))
}

// Wrapf is WrapfOrNil if err != nil, and Errorf otherwise: it never returns nil
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return WrapfOrNil(err, format, args...)
}

// WrapfWithStack annotates err with a message and the current stack. Printing the
// result with %+v shows the trace. It returns nil if err is nil.
var WrapfWithStack = pkgerrors.Wrapf

// WithStack is re-exported from github.com/pkg/errors
var WithStack = pkgerrors.WithStack

// Cause is re-exported from github.com/pkg/errors
var Cause = pkgerrors.Cause
