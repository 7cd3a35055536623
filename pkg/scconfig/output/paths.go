package output

import (
	"bytes"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

// touched returns the current path of every file that was renamed or still
// needs a rename, in record order.
func touched(r *engine.Report) []string {
	var paths []string
	for _, rec := range r.Records {
		switch {
		case rec.Changed():
			paths = append(paths, rec.NewFilePath)
		case rec.Status == trace.StatusActionRequired && rec.RealFilePath != "":
			paths = append(paths, rec.RealFilePath)
		}
	}
	return paths
}

// PathsFormatter writes one path per line for files that were renamed or
// still need a rename, for piping to other tools.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	for _, p := range touched(r) {
		w.WriteString(p)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{}
	})
}

// Ensure PathsFormatter implements Formatter.
var _ Formatter = (*PathsFormatter)(nil)

// NullFormatter writes the same paths as PathsFormatter separated by null
// bytes, for xargs -0.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	for _, p := range touched(r) {
		w.WriteString(p)
		w.WriteByte(0)
	}
	return nil
}

func init() {
	Register("null", func() Formatter {
		return &NullFormatter{}
	})
}

// Ensure NullFormatter implements Formatter.
var _ Formatter = (*NullFormatter)(nil)
