package parser

import (
	"fmt"
	"io"
)

// Reporter receives one diagnostic per failed top-level construct. It
// separates recording an error from deciding how to display it; the driver
// picks the sink.
type Reporter interface {
	Report(err error)
	HadError() bool
}

// WriterReporter writes each reported error as one line to its writer
type WriterReporter struct {
	w      io.Writer
	hadErr bool
}

// NewWriterReporter creates a Reporter emitting to w
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

func (r *WriterReporter) Report(err error) {
	r.hadErr = true
	fmt.Fprintln(r.w, err)
}

func (r *WriterReporter) HadError() bool {
	return r.hadErr
}
