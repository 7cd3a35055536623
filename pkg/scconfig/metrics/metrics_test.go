package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

func sampleReport(failed bool) *engine.Report {
	records := []trace.Record{
		{Status: trace.StatusOK, RealFilePath: "a.config", NewFilePath: "a.config.disabled"},
		{Status: trace.StatusOK},
		{Status: trace.StatusActionRequired},
	}
	if failed {
		records = append(records, trace.Record{Status: trace.StatusFailed})
	}
	return &engine.Report{
		Records:   records,
		Summary:   engine.Summarize(records),
		Mode:      types.ModeApply,
		Target:    types.ProviderSolr,
		Role:      types.RoleContentDelivery,
		StartedAt: time.Unix(1700000000, 0),
		Duration:  1500 * time.Millisecond,
	}
}

// gather returns gauge values keyed by metric name, plus "/<status>" for
// the status-labelled family.
func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" {
					key += "/" + lp.GetValue()
				}
			}
			out[key] = m.GetGauge().GetValue()
		}
	}
	return out
}

func TestCollectors_Observe(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	report := sampleReport(true)

	c, err := NewCollectors(reg, report)
	if err != nil {
		t.Fatalf("NewCollectors() error = %v", err)
	}
	c.Observe(report)

	values := gather(t, reg)
	checks := map[string]float64{
		"scconfig_records/OK":                 2,
		"scconfig_records/ACTION":             1,
		"scconfig_records/FAIL":               1,
		"scconfig_records/NA":                 0,
		"scconfig_last_run_changed_files":     1,
		"scconfig_last_run_timestamp_seconds": 1700000000,
		"scconfig_last_run_duration_seconds":  1.5,
		"scconfig_last_run_success":           0,
	}
	for name, want := range checks {
		got, ok := values[name]
		if !ok {
			t.Errorf("%s not gathered", name)
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	if _, err := NewCollectors(reg, report); err == nil {
		t.Error("second NewCollectors() on same registry error = nil, want duplicate registration error")
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "textfile", "scconfig.prom")
	if err := WriteTextfile(path, sampleReport(false)); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"# TYPE scconfig_records gauge",
		`status="OK"`,
		`role="CD"`,
		`target="SOLR"`,
		"scconfig_last_run_duration_seconds",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("textfile missing %q:\n%s", want, content)
		}
	}

	var successLine string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "scconfig_last_run_success{") {
			successLine = line
		}
	}
	if !strings.HasSuffix(successLine, " 1") {
		t.Errorf("success line = %q, want value 1", successLine)
	}
}
