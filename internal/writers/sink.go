// internal/writers/sink.go
package writers

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Stdout is the path that selects standard output.
const Stdout = "-"

const bufSize = 1 << 20

// Sink is a buffered output destination.
type Sink struct {
	name string
	w    *bufio.Writer
	c    io.Closer // nil for standard output
}

// Name is the path the sink was opened with.
func (s *Sink) Name() string { return s.name }

func (s *Sink) Write(p []byte) (int, error) { return s.w.Write(p) }

// Opener creates sinks and closes them together.
type Opener struct {
	stdout io.Writer
	shared *Sink
	sinks  []*Sink
}

// NewOpener returns an Opener whose "-" sinks write to stdout.
func NewOpener(stdout io.Writer) *Opener { return &Opener{stdout: stdout} }

// Open returns the sink for path. An empty path means no output and
// yields (nil, nil).
func (o *Opener) Open(path string) (*Sink, error) {
	switch path {
	case "":
		return nil, nil
	case Stdout:
		if o.shared == nil {
			o.shared = &Sink{name: Stdout, w: bufio.NewWriterSize(o.stdout, bufSize)}
			o.sinks = append(o.sinks, o.shared)
		}
		return o.shared, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "open output")
	}
	s := &Sink{name: path, w: bufio.NewWriterSize(f, bufSize), c: f}
	o.sinks = append(o.sinks, s)
	return s, nil
}

// Close flushes and closes every sink and returns the first error.
func (o *Opener) Close() error {
	var first error
	for _, s := range o.sinks {
		err := s.w.Flush()
		if s.c != nil {
			if cerr := s.c.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil && first == nil {
			first = errors.Wrapf(err, "close %s", s.name)
		}
	}
	o.sinks = nil
	o.shared = nil
	return first
}
