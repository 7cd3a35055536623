// Package metrics exports the outcome of a reconciliation run in the
// Prometheus text format, for collection by the node exporter's textfile
// collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

const namespace = "scconfig"

// Collectors holds the gauges describing one run.
type Collectors struct {
	Records  *prometheus.GaugeVec
	Changed  prometheus.Gauge
	Started  prometheus.Gauge
	Duration prometheus.Gauge
	Success  prometheus.Gauge
}

// NewCollectors creates the run gauges labelled with the run's role,
// target and mode, and registers them with reg.
func NewCollectors(reg prometheus.Registerer, report *engine.Report) (*Collectors, error) {
	labels := prometheus.Labels{
		"role":   report.Role.String(),
		"target": report.Target.String(),
		"mode":   report.Mode.String(),
	}

	c := &Collectors{
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "records",
			Help:        "Manifest entries by reconciliation status in the last run.",
			ConstLabels: labels,
		}, []string{"status"}),
		Changed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_changed_files",
			Help:        "Files renamed by the last run.",
			ConstLabels: labels,
		}),
		Started: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last run started.",
			ConstLabels: labels,
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_duration_seconds",
			Help:        "Duration of the last run in seconds.",
			ConstLabels: labels,
		}),
		Success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_success",
			Help:        "1 if no entry failed in the last run, 0 otherwise.",
			ConstLabels: labels,
		}),
	}

	for _, col := range []prometheus.Collector{c.Records, c.Changed, c.Started, c.Duration, c.Success} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return c, nil
}

// Observe sets every gauge from report.
func (c *Collectors) Observe(report *engine.Report) {
	for _, status := range trace.Statuses {
		c.Records.WithLabelValues(status.String()).Set(float64(report.Summary.Count(status)))
	}
	c.Changed.Set(float64(report.Summary.Changed))
	c.Started.Set(float64(report.StartedAt.UnixNano()) / 1e9)
	c.Duration.Set(report.Duration.Seconds())
	if report.Summary.Failed == 0 {
		c.Success.Set(1)
	} else {
		c.Success.Set(0)
	}
}

// WriteTextfile writes the metrics for report to path through a private
// registry. The write is atomic.
func WriteTextfile(path string, report *engine.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}

	reg := prometheus.NewRegistry()
	c, err := NewCollectors(reg, report)
	if err != nil {
		return err
	}
	c.Observe(report)

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
