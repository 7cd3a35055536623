package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

// document is the structure shared by the json and yaml formatters.
type document struct {
	Meta    documentMeta   `json:"meta" yaml:"meta"`
	Summary engine.Summary `json:"summary" yaml:"summary"`
	Records []trace.Record `json:"records" yaml:"records"`
}

type documentMeta struct {
	Mode      string    `json:"mode" yaml:"mode"`
	Target    string    `json:"target" yaml:"target"`
	Role      string    `json:"role" yaml:"role"`
	WebRoot   string    `json:"web_root" yaml:"web_root"`
	Manifest  string    `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Duration  string    `json:"duration" yaml:"duration"`
}

func buildDocument(r *engine.Report) document {
	records := r.Records
	if records == nil {
		records = []trace.Record{}
	}
	return document{
		Meta: documentMeta{
			Mode:      r.Mode.String(),
			Target:    r.Target.String(),
			Role:      r.Role.String(),
			WebRoot:   r.WebRoot,
			Manifest:  r.Manifest,
			StartedAt: r.StartedAt,
			Duration:  r.Duration.String(),
		},
		Summary: r.Summary,
		Records: records,
	}
}

// JSONFormatter formats the report as a single indented JSON object with
// meta, summary and records sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter writes one compact JSON record per line, for streaming
// into tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *engine.Report) error {
	for _, rec := range r.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
