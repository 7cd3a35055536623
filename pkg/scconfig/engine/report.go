package engine

import (
	"fmt"
	"time"

	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

// Report is the result of a reconciliation run.
type Report struct {
	Records   []trace.Record       `json:"records" yaml:"records"`
	Summary   Summary              `json:"summary" yaml:"summary"`
	Mode      types.Mode           `json:"mode" yaml:"mode"`
	Target    types.SearchProvider `json:"target" yaml:"target"`
	Role      types.Role           `json:"role" yaml:"role"`
	WebRoot   string               `json:"web_root" yaml:"web_root"`
	Manifest  string               `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	StartedAt time.Time            `json:"started_at" yaml:"started_at"`
	Duration  time.Duration        `json:"duration" yaml:"duration"`
}

// Summary counts records per status.
type Summary struct {
	Total          int `json:"total" yaml:"total"`
	NotApplicable  int `json:"not_applicable" yaml:"not_applicable"`
	OK             int `json:"ok" yaml:"ok"`
	ActionRequired int `json:"action_required" yaml:"action_required"`
	Failed         int `json:"failed" yaml:"failed"`
	Changed        int `json:"changed" yaml:"changed"`
}

// Summarize counts records.
func Summarize(records []trace.Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case trace.StatusOK:
			s.OK++
		case trace.StatusActionRequired:
			s.ActionRequired++
		case trace.StatusFailed:
			s.Failed++
		default:
			s.NotApplicable++
		}
		if r.Changed() {
			s.Changed++
		}
	}
	return s
}

// Count returns the number of records with status.
func (s Summary) Count(status trace.Status) int {
	switch status {
	case trace.StatusOK:
		return s.OK
	case trace.StatusActionRequired:
		return s.ActionRequired
	case trace.StatusFailed:
		return s.Failed
	default:
		return s.NotApplicable
	}
}

// Err returns ErrFailed if any record failed. With strict it also returns
// ErrActionRequired when a record has a pending change.
func (s Summary) Err(strict bool) error {
	if s.Failed > 0 {
		return fmt.Errorf("%w: %d of %d entries", ErrFailed, s.Failed, s.Total)
	}
	if strict && s.ActionRequired > 0 {
		return fmt.Errorf("%w: %d of %d entries", ErrActionRequired, s.ActionRequired, s.Total)
	}
	return nil
}

// Filter returns the records whose status is one of statuses.
func (r *Report) Filter(statuses ...trace.Status) []trace.Record {
	var out []trace.Record
	for _, rec := range r.Records {
		for _, s := range statuses {
			if rec.Status == s {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
