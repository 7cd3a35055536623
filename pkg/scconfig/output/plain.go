package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
)

// PlainFormatter formats the records as an aligned, uncolored table
// suitable for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := fmt.Fprintln(tw, "STATUS\tENTRY\tFILE\tDETAILS"); err != nil {
		return err
	}
	for _, rec := range r.Records {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			rec.Status, rec.ManifestDescription, FilePath(rec), rec.StatusDetails); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
