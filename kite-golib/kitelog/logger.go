package kitelog

import (
	"fmt"
	"io"
	"log"
)

var flags = log.LstdFlags | log.Lmicroseconds

// New returns a Logger writing to w, prefixing each line with "[name] " when a name
// is given.
func New(w io.Writer, name string) *Logger {
	var prefix string
	if name != "" {
		prefix = fmt.Sprintf("[%s] ", name)
	}
	return &Logger{
		Default: log.New(w, prefix, flags),
	}
}

// Logger encapsulates multiple logging handlers
type Logger struct {
	Default   *log.Logger
	Durations Durations
}

// Interface encapsulates the relevant methods of log.Logger
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Default.Output(2, fmt.Sprintf(format, v...))
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	l.Default.Output(2, fmt.Sprintln(v...))
}

// Discard drops everything logged to it
var Discard Interface = discard{}

type discard struct{}

func (discard) Printf(string, ...interface{}) {}
func (discard) Println(...interface{})        {}

// OrDiscard returns l, or Discard if l is nil.
func OrDiscard(l Interface) Interface {
	if l == nil {
		return Discard
	}
	return l
}
