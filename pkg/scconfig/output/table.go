package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

// tableHeader lists the columns shared by the tabular formatters.
var tableHeader = []string{"STATUS", "ENTRY", "PROVIDER", "FILE", "NEW_FILE", "DETAILS"}

func tableRow(rec trace.Record) []string {
	return []string{
		rec.Status.String(),
		rec.ManifestDescription,
		rec.ManifestSearchProvider,
		rec.RealFilePath,
		rec.NewFilePath,
		rec.StatusDetails,
	}
}

// TSVFormatter formats the records as tab-separated values. Tabs and
// newlines inside fields are replaced with spaces.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	w.WriteString(strings.Join(tableHeader, "\t"))
	w.WriteByte('\n')

	for _, rec := range r.Records {
		row := tableRow(rec)
		for i, field := range row {
			row[i] = tsvReplacer.Replace(field)
		}
		w.WriteString(strings.Join(row, "\t"))
		w.WriteByte('\n')
	}
	return nil
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func init() {
	Register("tsv", func() Formatter {
		return &TSVFormatter{}
	})
}

// Ensure TSVFormatter implements Formatter.
var _ Formatter = (*TSVFormatter)(nil)

// CSVFormatter formats the records as RFC 4180 comma-separated values.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(tableHeader); err != nil {
		return err
	}
	for _, rec := range r.Records {
		if err := writer.Write(tableRow(rec)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func init() {
	Register("csv", func() Formatter {
		return &CSVFormatter{}
	})
}

// Ensure CSVFormatter implements Formatter.
var _ Formatter = (*CSVFormatter)(nil)

// MarkdownFormatter formats the records as a GitHub-flavored Markdown
// table followed by a summary line.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	w.WriteString("| " + strings.Join(tableHeader, " | ") + " |\n")
	w.WriteString(strings.Repeat("|---", len(tableHeader)) + "|\n")

	for _, rec := range r.Records {
		row := tableRow(rec)
		for i, field := range row {
			row[i] = escapeMarkdownPipe(field)
		}
		w.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	s := r.Summary
	fmt.Fprintf(w, "\n%d entries: %d OK, %d ACTION, %d FAIL, %d NA, %d renamed\n",
		s.Total, s.OK, s.ActionRequired, s.Failed, s.NotApplicable, s.Changed)
	return nil
}

// escapeMarkdownPipe escapes pipe characters in a string for Markdown tables.
func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func init() {
	Register("markdown", func() Formatter {
		return &MarkdownFormatter{}
	})
}

// Ensure MarkdownFormatter implements Formatter.
var _ Formatter = (*MarkdownFormatter)(nil)
