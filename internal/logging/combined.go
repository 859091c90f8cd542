package logging

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes to every writer, collecting their errors.
type CombinedWriter struct {
	Writers []io.Writer
}

// NewCombinedWriter tees writes to writers.
func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: append([]io.Writer(nil), writers...)}
}

// Write reports the largest byte count written by any writer.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	n := 0
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
		}
		if written > n {
			n = written
		}
	}
	return n, err
}
