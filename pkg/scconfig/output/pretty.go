package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

// PrettyFormatter renders a styled report for terminals. Failed records
// include their processing trace; with Verbose every record does.
type PrettyFormatter struct {
	Verbose bool
}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatRecords(r))
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(r *engine.Report) string {
	var lines []string

	lines = append(lines, LabelStyle.Render("Web root:")+" "+ValueStyle.Render(r.WebRoot))
	if r.Manifest != "" {
		lines = append(lines, LabelStyle.Render("Manifest:")+" "+ValueStyle.Render(r.Manifest))
	}

	parts := []string{
		LabelStyle.Render("Role:") + " " + ValueStyle.Render(r.Role.Title()),
		LabelStyle.Render("Target:") + " " + ValueStyle.Render(r.Target.String()),
		LabelStyle.Render("Mode:") + " " + TitleStyle.Render(r.Mode.String()),
	}
	lines = append(lines, strings.Join(parts, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatRecords(r *engine.Report) string {
	if len(r.Records) == 0 {
		return MutedStyle.Render("  Manifest has no entries") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s  %s\n",
		TableHeaderStyle.Render(padRight("STATUS", 6)),
		TableHeaderStyle.Render("ENTRY")))

	for _, rec := range r.Records {
		badge := StatusStyle(rec.Status).Render(padRight(rec.Status.String(), 6))
		sb.WriteString(fmt.Sprintf("  %s  %s\n", badge, ValueStyle.Render(rec.ManifestDescription)))
		sb.WriteString(fmt.Sprintf("          %s\n", PathStyle.Render(FilePath(rec))))
		if rec.StatusDetails != "" {
			sb.WriteString(fmt.Sprintf("          %s\n", detailStyle(rec.Status).Render(rec.StatusDetails)))
		}
		if f.Verbose || rec.Status == trace.StatusFailed {
			for _, line := range rec.ProcessingTrace {
				sb.WriteString(fmt.Sprintf("            %s\n", MutedStyle.Render("- "+line)))
			}
		}
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *engine.Report) string {
	s := r.Summary
	parts := []string{
		LabelStyle.Render("Entries:") + " " + ValueStyle.Render(humanize.Comma(int64(s.Total))),
		SuccessStyle.Render(fmt.Sprintf("OK %d", s.OK)),
		WarningStyle.Render(fmt.Sprintf("ACTION %d", s.ActionRequired)),
		ErrorStyle.Render(fmt.Sprintf("FAIL %d", s.Failed)),
		MutedStyle.Render(fmt.Sprintf("NA %d", s.NotApplicable)),
		LabelStyle.Render("Renamed:") + " " + ValueStyle.Render(humanize.Comma(int64(s.Changed))),
		LabelStyle.Render("in") + " " + ValueStyle.Render(formatDuration(r.Duration)),
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

func detailStyle(s trace.Status) lipgloss.Style {
	switch s {
	case trace.StatusFailed:
		return ErrorStyle
	case trace.StatusActionRequired:
		return WarningStyle
	default:
		return MutedStyle
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
	Register("trace", func() Formatter {
		return &PrettyFormatter{Verbose: true}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
