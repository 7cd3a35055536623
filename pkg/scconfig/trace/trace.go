// Package trace holds the per-entry result of a reconciliation run.
//
// A Builder is created for each manifest entry, accumulates decision notes
// while the entry is processed and finally produces an immutable Record.
package trace

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the terminal state of a reconciled entry.
type Status int

const (
	// StatusNotApplicable is the initial state; it is also terminal for
	// entries that were never evaluated.
	StatusNotApplicable Status = iota
	// StatusOK means the file is (now) in the required state.
	StatusOK
	// StatusActionRequired means a verify run found a pending change.
	StatusActionRequired
	// StatusFailed means the entry could not be reconciled.
	StatusFailed
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNotApplicable, StatusOK, StatusActionRequired, StatusFailed}

// String returns the short status code.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusActionRequired:
		return "ACTION"
	case StatusFailed:
		return "FAIL"
	default:
		return "NA"
	}
}

// ErrInvalidStatus indicates that the status string could not be parsed.
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus parses a status code (case-insensitive).
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NA", "NOTAPPLICABLE":
		return StatusNotApplicable, nil
	case "OK":
		return StatusOK, nil
	case "ACTION", "ACTIONREQUIRED":
		return StatusActionRequired, nil
	case "FAIL", "FAILED":
		return StatusFailed, nil
	default:
		return StatusNotApplicable, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Record is the outcome of reconciling one manifest entry.
type Record struct {
	ManifestDescription    string   `json:"manifest_description" yaml:"manifest_description"`
	ManifestRelativePath   string   `json:"manifest_relative_path" yaml:"manifest_relative_path"`
	ManifestSearchProvider string   `json:"manifest_search_provider" yaml:"manifest_search_provider"`
	ManifestRow            int      `json:"manifest_row,omitempty" yaml:"manifest_row,omitempty"`
	RealFilePath           string   `json:"real_file_path,omitempty" yaml:"real_file_path,omitempty"`
	NewFilePath            string   `json:"new_file_path,omitempty" yaml:"new_file_path,omitempty"`
	ProcessingTrace        []string `json:"processing_trace" yaml:"processing_trace"`
	Status                 Status   `json:"status" yaml:"status"`
	StatusDetails          string   `json:"status_details" yaml:"status_details"`
	Error                  string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Changed reports whether the record carries a rename that happened.
func (r Record) Changed() bool {
	return r.NewFilePath != "" && r.NewFilePath != r.RealFilePath
}

// Builder accumulates the trace of a single entry. It is not safe for
// concurrent use and must not be reused once Build has been called.
type Builder struct {
	rec   Record
	built bool
}

// NewBuilder starts a record for the described manifest entry.
func NewBuilder(description, relativePath, provider string) *Builder {
	return &Builder{rec: Record{
		ManifestDescription:    description,
		ManifestRelativePath:   relativePath,
		ManifestSearchProvider: provider,
		Status:                 StatusNotApplicable,
	}}
}

// Note appends a trace line.
func (b *Builder) Note(format string, args ...any) *Builder {
	b.rec.ProcessingTrace = append(b.rec.ProcessingTrace, fmt.Sprintf(format, args...))
	return b
}

// Row records the 1-based manifest row the entry came from.
func (b *Builder) Row(n int) *Builder {
	b.rec.ManifestRow = n
	return b
}

// RealFile records the resolved file.
func (b *Builder) RealFile(path string) *Builder {
	b.rec.RealFilePath = path
	return b
}

// NewFile records the file's name after a rename.
func (b *Builder) NewFile(path string) *Builder {
	b.rec.NewFilePath = path
	return b
}

// Finish sets the terminal status and detail.
func (b *Builder) Finish(status Status, details string) *Builder {
	b.rec.Status = status
	b.rec.StatusDetails = details
	return b
}

// Fail marks the record failed. Every wrapped error in the chain is noted
// in the trace, and kind names the error category.
func (b *Builder) Fail(kind string, err error) *Builder {
	for e := err; e != nil; e = errors.Unwrap(e) {
		b.Note("error: %v", e)
	}
	b.rec.Error = kind
	return b.Finish(StatusFailed, err.Error())
}

// Status returns the current status.
func (b *Builder) Status() Status {
	return b.rec.Status
}

// Build returns the finished record. The trace slice is copied so later
// changes to the builder cannot reach the returned value.
func (b *Builder) Build() Record {
	b.built = true
	rec := b.rec
	rec.ProcessingTrace = append([]string(nil), b.rec.ProcessingTrace...)
	return rec
}

// Built reports whether Build has been called.
func (b *Builder) Built() bool {
	return b.built
}
